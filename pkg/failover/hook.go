package failover

import (
	"github.com/jzx17/goresilient/pkg/retry"
)

// RegionProvider supplies the ordered fallback regions. It is consulted
// lazily, the first time a throttle error forces a failover.
type RegionProvider func() []string

// ErrorHook builds an executor error hook that advances st between
// attempts: errors the throttle classifier claims move the cursor to the
// next region, everything else retries in place. A nil throttle defaults
// to ThrottleClassifier.
//
// A cursor that runs off the end of the sequence is not reported here; the
// next CurrentRegion call fails with ErrRegionsExhausted, which no built-in
// classifier treats as transient, so the executor propagates it.
func ErrorHook(regions RegionProvider, throttle retry.Classifier) func(err error, st *State) {
	if throttle == nil {
		throttle = retry.ThrottleClassifier{}
	}

	return func(err error, st *State) {
		if !throttle.IsTransient(err) {
			st.WillRetry(err)
			return
		}

		if !st.HasRegionSequence() && regions != nil {
			st.SetRegionSequence(regions())
		}
		_ = st.WillRetryNextRegion(err)
	}
}
