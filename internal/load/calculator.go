// Package load computes the mechanical load of logged sets, exercises and
// workouts. Every function is pure: inputs are read-only snapshots and data
// problems degrade to zero instead of failing.
package load

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/claude/carga/internal/models"
	"github.com/claude/carga/internal/numeric"
)

// DefaultBodyweightKg is used when a user has no recorded weight.
const DefaultBodyweightKg = 70.0

const invalidBreakdown = "Dados inválidos"

// SetLoad is the load of a single set. TotalLoad is unrounded; Breakdown is
// the human readable composition of the figure.
type SetLoad struct {
	TotalLoad float64 `json:"total_load"`
	Breakdown string  `json:"breakdown"`
}

// EffectiveReps returns the rep count used for load: 1 for time-based sets,
// otherwise the first integer in the rep text, or 0.
func EffectiveReps(set *models.Set) int {
	if set.TimeBased {
		return 1
	}
	reps, ok := numeric.FirstInteger(string(set.Reps))
	if !ok {
		return 0
	}
	return reps
}

// CalculateSetLoad computes the load of one set performed as part of ex.
// Bodyweight movements ignore the external weight entirely. Otherwise the
// set weight is doubled for bilateral movements and the bar weight is added
// once, after doubling.
func CalculateSetLoad(set *models.Set, ex *models.Exercise, userWeight float64) SetLoad {
	if set == nil || ex == nil {
		return SetLoad{Breakdown: invalidBreakdown}
	}

	reps := EffectiveReps(set)
	weight := numeric.NonNegative(float64(set.Weight))

	if reps <= 0 {
		return SetLoad{Breakdown: "0 reps = 0 kg"}
	}

	traits := ex.Model.Characteristics
	if traits.Bodyweight {
		total := userWeight * float64(reps)
		return SetLoad{
			TotalLoad: total,
			Breakdown: fmt.Sprintf("%skg (PC) x %d reps = %s kg", formatKg(userWeight), reps, formatKg(math.Round(total))),
		}
	}

	perRep := weight
	var b strings.Builder
	b.WriteString(formatKg(weight))
	b.WriteString("kg")

	if traits.Bilateral {
		perRep *= 2
		b.Reset()
		fmt.Fprintf(&b, "(%skg x 2)", formatKg(weight))
	}
	if traits.Barbell {
		bar := numeric.NonNegative(float64(ex.BarWeight))
		perRep += bar
		fmt.Fprintf(&b, " + %skg (barra)", formatKg(bar))
	}

	total := perRep * float64(reps)
	fmt.Fprintf(&b, " x %d reps = %s kg", reps, formatKg(math.Round(total)))
	return SetLoad{TotalLoad: total, Breakdown: b.String()}
}

// formatKg prints the shortest decimal form: 80 -> "80", 12.5 -> "12.5".
func formatKg(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
