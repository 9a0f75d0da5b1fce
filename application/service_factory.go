package application

import (
	"apploto/domain/interfaces"
	"apploto/domain/ranking"
	"apploto/domain/services"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jonboulle/clockwork"
)

// LookupDecorator wraps the repository name lookup, e.g. with a cache
type LookupDecorator func(source ranking.ParticipantLookup) ranking.ParticipantLookup

// ServiceDependencies are the process-wide collaborators of the domain services
type ServiceDependencies struct {
	Clock      clockwork.Clock
	Hasher     interfaces.PasswordHasher
	Issuer     interfaces.TokenIssuer
	Mailer     interfaces.Mailer
	AdminEmail string
	Lookup     LookupDecorator // optional
	Faker      *gofakeit.Faker // optional, seeds simulations
}

// ServiceFactory builds domain services bound to a unit of work
type ServiceFactory struct {
	deps ServiceDependencies
}

// NewServiceFactory creates a service factory. A nil clock uses the real clock.
func NewServiceFactory(deps ServiceDependencies) *ServiceFactory {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	return &ServiceFactory{deps: deps}
}

// Clock returns the clock shared by the services
func (f *ServiceFactory) Clock() clockwork.Clock {
	return f.deps.Clock
}

// LotteryService creates a lottery service on uow's repositories
func (f *ServiceFactory) LotteryService(uow UnitOfWork) interfaces.LotteryService {
	var lookup ranking.ParticipantLookup = uow.UserRepository()
	if f.deps.Lookup != nil {
		lookup = f.deps.Lookup(lookup)
	}
	return services.NewLotteryService(
		uow.LotteryRepository(),
		uow.EntryRepository(),
		uow.LotteryResultRepository(),
		uow.LotteryRankingRepository(),
		uow.UserRepository(),
		lookup,
		uow.EventBus(),
		f.deps.Clock,
	)
}

// EntryService creates an entry service on uow's repositories
func (f *ServiceFactory) EntryService(uow UnitOfWork) interfaces.EntryService {
	return services.NewEntryService(
		uow.LotteryRepository(),
		uow.EntryRepository(),
		uow.EventBus(),
		f.deps.Clock,
	)
}

// SimulationService creates a simulation service on uow's repositories
func (f *ServiceFactory) SimulationService(uow UnitOfWork) interfaces.SimulationService {
	return services.NewSimulationService(
		f.LotteryService(uow),
		f.EntryService(uow),
		uow.UserRepository(),
		f.deps.Faker,
		f.deps.Clock,
	)
}

// AccountService creates an account service on uow's repositories
func (f *ServiceFactory) AccountService(uow UnitOfWork) interfaces.AccountService {
	return services.NewAccountService(uow.UserRepository(), f.deps.Hasher, uow.EventBus())
}

// AuthService creates an auth service on uow's repositories
func (f *ServiceFactory) AuthService(uow UnitOfWork) interfaces.AuthService {
	return services.NewAuthService(
		uow.UserRepository(),
		uow.TokenBlockRepository(),
		f.deps.Hasher,
		f.deps.Issuer,
		f.deps.Clock,
	)
}

// ContactService creates the contact form service. It needs no transaction.
func (f *ServiceFactory) ContactService() interfaces.ContactService {
	return services.NewContactService(f.deps.Mailer, f.deps.AdminEmail)
}
