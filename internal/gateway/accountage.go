package gateway

import (
	"sort"
	"time"
)

// Telegram does not expose account creation dates, so the join handler
// estimates them from the numeric user id. Ids are allocated roughly
// monotonically; the table below holds observed id/date reference points
// collected from public datasets, and EstimateCreation interpolates between
// them.
var idEpochs = []struct {
	id   int64
	date string
}{
	{1000000, "2013-08-01"},
	{2768409, "2013-11-01"},
	{11538514, "2014-06-01"},
	{23646077, "2015-01-01"},
	{38015510, "2015-06-01"},
	{61006595, "2016-02-01"},
	{101260938, "2016-08-01"},
	{140000000, "2017-03-01"},
	{200000000, "2017-08-01"},
	{234480941, "2018-01-01"},
	{291910914, "2018-06-01"},
	{400169472, "2019-02-01"},
	{616816630, "2020-01-01"},
	{727572658, "2020-07-01"},
	{925078064, "2021-06-01"},
	{1054883348, "2021-11-01"},
	{1271981557, "2022-06-01"},
	{1500000000, "2022-11-01"},
	{1800000000, "2023-06-01"},
	{2200000000, "2024-01-01"},
	{2700000000, "2024-08-01"},
	{3200000000, "2025-03-01"},
}

var epochTimes = func() []time.Time {
	times := make([]time.Time, len(idEpochs))
	for i, e := range idEpochs {
		t, err := time.Parse("2006-01-02", e.date)
		if err != nil {
			panic(err)
		}
		times[i] = t.UTC()
	}
	return times
}()

// EstimateCreation approximates when the account with the given id was
// registered. Ids below the first reference point map to the first date, ids
// beyond the last extrapolate along the final segment, and the result never
// exceeds now.
func EstimateCreation(userID int64, now time.Time) time.Time {
	now = now.UTC()
	if userID <= idEpochs[0].id {
		return epochTimes[0]
	}

	last := len(idEpochs) - 1
	if userID >= idEpochs[last].id {
		estimated := extrapolate(userID, last-1, last)
		if estimated.After(now) {
			return now
		}
		return estimated
	}

	// First reference point with id >= userID
	i := sort.Search(len(idEpochs), func(i int) bool { return idEpochs[i].id >= userID })
	estimated := interpolate(userID, i-1, i)
	if estimated.After(now) {
		return now
	}
	return estimated
}

func interpolate(userID int64, lo, hi int) time.Time {
	idSpan := idEpochs[hi].id - idEpochs[lo].id
	timeSpan := epochTimes[hi].Sub(epochTimes[lo])
	fraction := float64(userID-idEpochs[lo].id) / float64(idSpan)
	return epochTimes[lo].Add(time.Duration(fraction * float64(timeSpan)))
}

func extrapolate(userID int64, lo, hi int) time.Time {
	idSpan := idEpochs[hi].id - idEpochs[lo].id
	timeSpan := epochTimes[hi].Sub(epochTimes[lo])
	overshoot := float64(userID-idEpochs[hi].id) / float64(idSpan)
	return epochTimes[hi].Add(time.Duration(overshoot * float64(timeSpan)))
}
