package mocks

//go:generate mockery --name Authority --srcpkg github.com/aevon-lab/project-idmint/internal/sharder --output ./sharder --outpkg shardermocks --with-expecter
//go:generate mockery --name CounterStore --srcpkg github.com/aevon-lab/project-idmint/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
