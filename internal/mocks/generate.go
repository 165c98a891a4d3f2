package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name RowSource --dir ../domain/match --output domain/match --outpkg matchmock --filename row_source_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Feed --dir ../domain/live --output domain/live --outpkg livemock --filename feed_mock.go
