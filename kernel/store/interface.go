package store

import "github.com/suntrap/buildboard/kernel/model"

// FallbackStore supplies the data returned when the backend cannot be
// reached. Every read returns a copy the caller may keep.
type FallbackStore interface {
	User() model.User
	BuildStatus() model.RegionInventory
	BuildHistory(date string) model.RegionInventory
	Hostnames() []string
	ServerDetails(hostname string) model.ServerDetails
	Preconfigs() []model.Preconfig
	PushedPreconfigs() []model.PushedPreconfig
	BuildLog(hostname string) string
}

// OperationStore extends FallbackStore with the write operations, applied to
// the local data set so later reads reflect them.
type OperationStore interface {
	FallbackStore
	Assign(req model.AssignRequest) model.OperationResponse
	Push(req model.PushRequest) model.OperationResponse
}
