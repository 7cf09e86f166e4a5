package model

import (
	"github.com/pkg/errors"
)

const OperationSuccess = "success"

var (
	ErrInvalidAssignment = errors.New("serial number, hostname, and dbid are required")
	ErrInvalidDepot      = errors.New("unknown depot")
)

// AssignRequest is the body of POST /api/assign.
type AssignRequest struct {
	SerialNumber string `json:"serial_number"`
	Hostname     string `json:"hostname"`
	DBID         string `json:"dbid"`
}

func NewAssignRequest(s Server) AssignRequest {
	return AssignRequest{SerialNumber: s.SerialNumber, Hostname: s.Hostname, DBID: s.DBID}
}

func (r AssignRequest) Validate() error {
	if r.SerialNumber == "" || r.Hostname == "" || r.DBID == "" {
		return errors.Wrapf(ErrInvalidAssignment, "dbid [%s] hostname [%s]", r.DBID, r.Hostname)
	}
	return nil
}

// PushRequest is the body of POST /api/push-preconfig.
type PushRequest struct {
	Depot int `json:"depot"`
}

func (r PushRequest) Validate() error {
	if _, err := RegionByDepot(r.Depot); err != nil {
		return err
	}
	return nil
}

// OperationResponse is returned by the assign and push endpoints.
type OperationResponse struct {
	Status  string `json:"status" yaml:"status"`
	Message string `json:"message" yaml:"message"`
}

func (r OperationResponse) Succeeded() bool {
	return r.Status == OperationSuccess
}
