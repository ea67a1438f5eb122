package vulkan

import (
	"github.com/cockroachdb/errors"

	"github.com/RotatingArtDev/FNA3D/driver"
)

// queryData is one live occlusion query: a slot index into the shared occlusion
// query pool created at bootstrap.
type queryData struct {
	index  uint32
	active bool
}

// CreateQuery allocates an occlusion query slot from the shared pool.
func (r *renderer) CreateQuery() (driver.QueryHandle, error) {
	n := len(r.occlusionFree)
	if n == 0 {
		return driver.QueryHandle{}, errors.Newf("occlusion query pool exhausted at %d queries", maxOcclusionQueries)
	}
	index := r.occlusionFree[n-1]
	r.occlusionFree = r.occlusionFree[:n-1]
	return driver.QueryHandle(r.queries.add(&queryData{index: index})), nil
}

// AddDisposeQuery unregisters the query, waits for the device to go idle and
// returns its pool slot.
func (r *renderer) AddDisposeQuery(query driver.QueryHandle) error {
	q, ok := r.queries.remove(driver.Handle(query))
	if !ok {
		return errors.New("dispose of unknown query")
	}
	if err := r.disposeIdle(); err != nil {
		return err
	}
	r.occlusionFree = append(r.occlusionFree, q.index)
	return nil
}

// QueryBegin resets the query's pool slot and starts counting passed samples.
// Requires an active frame; the commands record into the current command buffer.
func (r *renderer) QueryBegin(query driver.QueryHandle) error {
	entry, ok := r.queries.get(driver.Handle(query))
	if !ok {
		return errors.New("begin of unknown query")
	}
	if !r.frameActive {
		return errors.New("query begin outside an active frame")
	}
	q := *entry
	r.backend.CmdResetQueryPool(r.currentCommandBuffer, r.occlusionPool, q.index, 1)
	r.backend.CmdBeginQuery(r.currentCommandBuffer, r.occlusionPool, q.index)
	q.active = true
	return nil
}

// QueryEnd stops the query's sample counting.
func (r *renderer) QueryEnd(query driver.QueryHandle) error {
	entry, ok := r.queries.get(driver.Handle(query))
	if !ok {
		return errors.New("end of unknown query")
	}
	if !r.frameActive {
		return errors.New("query end outside an active frame")
	}
	q := *entry
	if !q.active {
		return errors.New("query end without begin")
	}
	r.backend.CmdEndQuery(r.currentCommandBuffer, r.occlusionPool, q.index)
	q.active = false
	return nil
}

// QueryComplete polls whether the query's result is available without blocking.
func (r *renderer) QueryComplete(query driver.QueryHandle) (bool, error) {
	entry, ok := r.queries.get(driver.Handle(query))
	if !ok {
		return false, errors.New("poll of unknown query")
	}
	_, available, err := r.backend.QueryResult(r.device, r.occlusionPool, (*entry).index)
	if err != nil {
		return false, errors.Wrap(err, "poll query result")
	}
	return available, nil
}

// QueryPixelCount returns the query's passed-sample count. Valid once
// QueryComplete reports availability.
func (r *renderer) QueryPixelCount(query driver.QueryHandle) (int32, error) {
	entry, ok := r.queries.get(driver.Handle(query))
	if !ok {
		return 0, errors.New("read of unknown query")
	}
	value, _, err := r.backend.QueryResult(r.device, r.occlusionPool, (*entry).index)
	if err != nil {
		return 0, errors.Wrap(err, "read query result")
	}
	return int32(value), nil
}
