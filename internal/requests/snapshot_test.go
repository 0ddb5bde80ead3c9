package requests

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/medshare/portal-dashboard/pkg/types"
)

func TestSnapshotRefreshReplacesBackendCopy(t *testing.T) {
	core := new(mockCoreClient)
	repo := NewSnapshotRepository(core, testLogger())

	core.On("GetPatientRecords", mock.Anything).Return([]*types.PatientRecord{
		{RequestID: "REQ-1", PatientID: "P001", PatientIDs: []string{"P001", "P002"}},
	}, nil).Once()

	assert.NoError(t, repo.Refresh(context.Background()))

	ids := repo.RequestedPatientIDs()
	assert.True(t, ids["P001"])
	assert.True(t, ids["P002"])

	_, refreshed := repo.LastRefreshed()
	assert.True(t, refreshed)

	core.On("GetPatientRecords", mock.Anything).Return([]*types.PatientRecord{
		{RequestID: "REQ-2", PatientID: "P003"},
	}, nil).Once()

	assert.NoError(t, repo.Refresh(context.Background()))

	ids = repo.RequestedPatientIDs()
	assert.False(t, ids["P001"])
	assert.True(t, ids["P003"])
}

func TestSnapshotRefreshFailureKeepsPreviousCopy(t *testing.T) {
	core := new(mockCoreClient)
	repo := NewSnapshotRepository(core, testLogger())

	core.On("GetPatientRecords", mock.Anything).Return([]*types.PatientRecord{
		{RequestID: "REQ-1", PatientID: "P001"},
	}, nil).Once()
	assert.NoError(t, repo.Refresh(context.Background()))

	core.On("GetPatientRecords", mock.Anything).Return(nil, errors.New("core unreachable")).Once()
	assert.Error(t, repo.Refresh(context.Background()))

	assert.True(t, repo.RequestedPatientIDs()["P001"])
}

func TestSnapshotRequestsIncludeLocalAppends(t *testing.T) {
	core := new(mockCoreClient)
	repo := NewSnapshotRepository(core, testLogger())

	core.On("GetPatientRecords", mock.Anything).Return([]*types.PatientRecord{
		{RequestID: "REQ-1", PatientIDs: []string{"P001"}},
		{RequestID: "REQ-2", PatientID: "P005"},
	}, nil)
	assert.NoError(t, repo.Refresh(context.Background()))

	repo.Append(&types.DataRequest{RequestID: "REQ-3", PatientIDs: []string{"P003"}})

	requests := repo.Requests()
	// records without an identifier set carry no duplicate-set signal
	assert.Len(t, requests, 2)
	assert.Equal(t, "REQ-1", requests[0].RequestID)
	assert.Equal(t, "REQ-3", requests[1].RequestID)
}

func TestSnapshotBeforeFirstRefresh(t *testing.T) {
	repo := NewSnapshotRepository(new(mockCoreClient), testLogger())

	assert.Empty(t, repo.Requests())
	assert.Empty(t, repo.RequestedPatientIDs())

	_, refreshed := repo.LastRefreshed()
	assert.False(t, refreshed)
}
