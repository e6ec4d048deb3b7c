package failover

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jzx17/goresilient/pkg/types"
)

func TestState_StartsOnPrimary(t *testing.T) {
	st := NewState()

	assert.True(t, st.IsPrimaryRegion())
	assert.Equal(t, uint16(0), st.Attempts())
	assert.False(t, st.HasRegionSequence())
	assert.NoError(t, st.LastError())

	_, err := st.CurrentRegion()
	assert.ErrorIs(t, err, types.ErrRegionsExhausted)
}

func TestState_FailoverSequence(t *testing.T) {
	st := NewState()
	st.SetRegionSequence([]string{"westus", "eastus"})

	cause := errors.New("throttled")

	assert.NoError(t, st.WillRetryNextRegion(cause))
	region, err := st.CurrentRegion()
	assert.NoError(t, err)
	assert.Equal(t, "westus", region)
	assert.False(t, st.IsPrimaryRegion())
	assert.Equal(t, uint16(1), st.Attempts())
	assert.Equal(t, cause, st.LastError())

	assert.NoError(t, st.WillRetryNextRegion(cause))
	region, err = st.CurrentRegion()
	assert.NoError(t, err)
	assert.Equal(t, "eastus", region)

	// the third advance runs off the end
	assert.ErrorIs(t, st.WillRetryNextRegion(cause), types.ErrRegionsExhausted)
	_, err = st.CurrentRegion()
	assert.ErrorIs(t, err, types.ErrRegionsExhausted)
	assert.Equal(t, uint16(3), st.Attempts())
}

func TestState_NextRegionWithoutSequence(t *testing.T) {
	st := NewState()

	err := st.WillRetryNextRegion(errors.New("throttled"))
	assert.ErrorIs(t, err, types.ErrRegionsExhausted)
}

func TestState_WillRetryKeepsRegion(t *testing.T) {
	st := NewState()
	st.SetRegionSequence([]string{"westus"})
	assert.NoError(t, st.WillRetryNextRegion(errors.New("throttled")))

	st.WillRetry(errors.New("timeout"))
	st.WillRetry(errors.New("timeout"))

	region, err := st.CurrentRegion()
	assert.NoError(t, err)
	assert.Equal(t, "westus", region)
	assert.Equal(t, uint16(3), st.Attempts())
}

func TestState_SequenceIsSetOnce(t *testing.T) {
	st := NewState()
	st.SetRegionSequence([]string{"westus"})
	st.SetRegionSequence([]string{"other"})

	assert.NoError(t, st.WillRetryNextRegion(errors.New("throttled")))
	region, err := st.CurrentRegion()
	assert.NoError(t, err)
	assert.Equal(t, "westus", region)
}

func TestState_SequenceIsCopiedIn(t *testing.T) {
	regions := []string{"westus", "eastus"}
	st := NewState()
	st.SetRegionSequence(regions)
	regions[0] = "mutated"

	assert.NoError(t, st.WillRetryNextRegion(errors.New("throttled")))
	region, err := st.CurrentRegion()
	assert.NoError(t, err)
	assert.Equal(t, "westus", region)
}
