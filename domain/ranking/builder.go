package ranking

import "sort"

// Ranking defaults
const (
	DefaultMinScore     = 10
	DefaultMaxPaidRanks = 10
)

// Tier is a group of participants sharing one score and one competition rank
type Tier struct {
	Rank           int
	Score          int
	ParticipantIDs []int64
}

// Ranking is a list of tiers in ascending rank order
type Ranking []Tier

// Empty returns true when nobody qualified
func (r Ranking) Empty() bool {
	return len(r) == 0
}

// ParticipantIDs returns every ranked participant in rank order
func (r Ranking) ParticipantIDs() []int64 {
	ids := make([]int64, 0, r.ParticipantCount())
	for _, tier := range r {
		ids = append(ids, tier.ParticipantIDs...)
	}
	return ids
}

// ParticipantCount returns the number of ranked participants
func (r Ranking) ParticipantCount() int {
	n := 0
	for _, tier := range r {
		n += len(tier.ParticipantIDs)
	}
	return n
}

type options struct {
	minScore     int
	maxPaidRanks int
}

// Option customises BuildRanking
type Option func(*options)

// WithMinScore sets the lowest score that still gets ranked
func WithMinScore(n int) Option {
	return func(o *options) { o.minScore = n }
}

// WithMaxPaidRanks sets how many participants are ranked before tiers stop being added
func WithMaxPaidRanks(n int) Option {
	return func(o *options) { o.maxPaidRanks = n }
}

// Scored is a participant ID with its computed score
type Scored struct {
	ID    int64
	Score int
}

// BuildRanking scores every participant against draw and ranks the results
func BuildRanking(participants []Participant, draw Draw, opts ...Option) Ranking {
	scored := make([]Scored, 0, len(participants))
	for _, p := range participants {
		scored = append(scored, Scored{
			ID:    p.ID,
			Score: Score(draw.Numbers, draw.Lucky, p.Numbers, p.Lucky),
		})
	}
	return RankScored(scored, opts...)
}

// RankScored groups scored participants into competition-ranked tiers.
//
// Scores below the minimum are dropped. A tie of k players at rank r pushes the
// next tier to r+k. Tiers stop being added once maxPaidRanks players are ranked,
// but the tier crossing that limit is kept whole. Players inside a tier keep
// their input order.
func RankScored(scored []Scored, opts ...Option) Ranking {
	o := options{minScore: DefaultMinScore, maxPaidRanks: DefaultMaxPaidRanks}
	for _, opt := range opts {
		opt(&o)
	}

	byScore := make(map[int][]int64)
	scores := make([]int, 0)
	for _, s := range scored {
		if s.Score < o.minScore {
			continue
		}
		if _, seen := byScore[s.Score]; !seen {
			scores = append(scores, s.Score)
		}
		byScore[s.Score] = append(byScore[s.Score], s.ID)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(scores)))

	ranking := make(Ranking, 0, len(scores))
	rank, ranked := 1, 0
	for _, score := range scores {
		if ranked >= o.maxPaidRanks {
			break
		}
		ids := byScore[score]
		ranking = append(ranking, Tier{Rank: rank, Score: score, ParticipantIDs: ids})
		ranked += len(ids)
		rank += len(ids)
	}
	return ranking
}
