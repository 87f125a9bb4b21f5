package services

// ServiceContainer holds instances of all the application services.
// Handlers only ever see these interfaces.
type ServiceContainer struct {
	Operation OperationSvcFacade
	Balance   BalanceSvc
	History   HistorySvc
	Reporting ReportingSvc
	User      UserSvcFacade
	Token     TokenSvcFacade
}
