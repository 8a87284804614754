package analysis

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/fitreport/internal/results"
)

func rec(id string, status int, gef float64) results.Record {
	return results.Record{ID: id, Status: results.Status(status), GlobalErrorFunction: gef}
}

func scenarioRecords() []results.Record {
	return []results.Record{
		rec("replica_0", 1, 3.5),
		rec("replica_1", 1, 4.5),
		rec("replica_2", 0, 1.0),
	}
}

func TestSelectGoodScenario(t *testing.T) {
	sel := SelectGood(scenarioRecords(), 4)
	assert.Equal(t, []string{"replica_0"}, sel.IDs)
	require.Len(t, sel.Records, 1)
	assert.Equal(t, "replica_0", sel.Records[0].ID)
	assert.Equal(t, 3, sel.Candidates)
	assert.Equal(t, 2, sel.Rejected())
	assert.Equal(t, 4.0, sel.Cutoff)

	v, id, err := FindMinimum(scenarioRecords(), GlobalErrorFunction)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
	assert.Equal(t, "replica_2", id)
}

func TestSelectGoodCutoffBounds(t *testing.T) {
	recs := []results.Record{
		rec("a", 1, 0.0),
		rec("b", 1, 1e9),
		rec("c", 2, 0.5),
		rec("d", 0, 0.5),
		rec("e", 1, 4.0),
	}
	assert.Empty(t, SelectGood(recs, 0).IDs, "strict comparison excludes gef == cutoff")
	assert.Equal(t, []string{"a", "b", "e"}, SelectGood(recs, math.Inf(1)).IDs)
	assert.Equal(t, []string{"a"}, SelectGood(recs, DefaultCutoff).IDs)
	assert.Empty(t, SelectGood(nil, DefaultCutoff).IDs)
}

func TestSelectGoodMatchesDefinitionUnderShuffle(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var recs []results.Record
	for i := 0; i < 200; i++ {
		recs = append(recs, rec(string(rune('A'+i%26))+string(rune('a'+i/26)), rng.Intn(3), rng.Float64()*8))
	}
	for trial := 0; trial < 20; trial++ {
		rng.Shuffle(len(recs), func(i, j int) { recs[i], recs[j] = recs[j], recs[i] })
		cutoff := rng.Float64() * 8
		sel := SelectGood(recs, cutoff)

		var want []string
		for _, r := range recs {
			if r.Status == results.StatusConverged && r.GlobalErrorFunction < cutoff {
				want = append(want, r.ID)
			}
		}
		assert.Equal(t, want, sel.IDs)
	}
}

func TestFindMinimumOrderIndependentForUniqueMinimum(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	recs := []results.Record{
		rec("replica_4", 1, 2.2),
		rec("replica_7", 1, 0.3),
		rec("replica_1", 1, 5.0),
		rec("replica_9", 1, 1.7),
		rec("replica_2", 1, 0.31),
	}
	for trial := 0; trial < 30; trial++ {
		rng.Shuffle(len(recs), func(i, j int) { recs[i], recs[j] = recs[j], recs[i] })
		v, id, err := FindMinimum(recs, GlobalErrorFunction)
		require.NoError(t, err)
		assert.Equal(t, 0.3, v)
		assert.Equal(t, "replica_7", id)
	}
}

func TestFindMinimumTiesGoToFirst(t *testing.T) {
	recs := []results.Record{rec("x", 1, 2), rec("y", 1, 1), rec("z", 1, 1)}
	_, id, err := FindMinimum(recs, GlobalErrorFunction)
	require.NoError(t, err)
	assert.Equal(t, "y", id)

	recs[1], recs[2] = recs[2], recs[1]
	_, id, err = FindMinimum(recs, GlobalErrorFunction)
	require.NoError(t, err)
	assert.Equal(t, "z", id)
}

func TestFindMinimumEmpty(t *testing.T) {
	_, _, err := FindMinimum(nil, GlobalErrorFunction)
	var eie *EmptyInputError
	require.ErrorAs(t, err, &eie)
}

func TestFindMinimumSkipsNaN(t *testing.T) {
	recs := []results.Record{rec("nan", 1, math.NaN()), rec("b", 1, 3), rec("c", 1, math.NaN())}
	v, id, err := FindMinimum(recs, GlobalErrorFunction)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
	assert.Equal(t, "b", id)
}

func TestFindMinimumPropagatesMissingField(t *testing.T) {
	recs := []results.Record{
		{ID: "replica_0", GlobalChi2: 1.2, HasGlobalChi2: true},
		{ID: "replica_5"},
	}
	_, _, err := FindMinimum(recs, GlobalChi2)
	var mfe *results.MissingFieldError
	require.ErrorAs(t, err, &mfe)
	assert.Equal(t, "replica_5", mfe.ReplicaID)
	assert.Equal(t, results.KeyGlobalChi2, mfe.Field)
}
