// test/mocks/mocks.go
package mocks

//go:generate mockgen -source=../../internal/core/ports/cache.go -destination=cache_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/collaborators.go -destination=collaborators_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/warehouse_repository.go -destination=warehouse_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/ledger_repository.go -destination=ledger_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/services.go -destination=services_mock.go -package=mocks
