package docstore

import (
	"strconv"
	"strings"
	"time"

	"github.com/claude/carga/internal/models"
	"github.com/claude/carga/internal/numeric"
)

func getString(m map[string]any, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func getBool(m map[string]any, key string) bool {
	if v, ok := m[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// getTime accepts Firestore timestamps and the string forms older app
// versions wrote.
func getTime(m map[string]any, key string) *time.Time {
	switch v := m[key].(type) {
	case time.Time:
		if v.IsZero() {
			return nil
		}
		return &v
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return &t
			}
		}
	}
	return nil
}

func getMap(m map[string]any, key string) map[string]any {
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return map[string]any{}
}

func getSlice(m map[string]any, key string) []any {
	if v, ok := m[key].([]any); ok {
		return v
	}
	return nil
}

func getKg(m map[string]any, key string) models.Kg {
	return models.Kg(numeric.ParseNonNegative(m[key], 0))
}

// getNumber returns the value only when it is stored as a number.
func getNumber(m map[string]any, key string) *float64 {
	var f float64
	switch v := m[key].(type) {
	case float64:
		f = v
	case int64:
		f = float64(v)
	case int:
		f = float64(v)
	default:
		return nil
	}
	return &f
}

func getReps(m map[string]any, key string) models.RepCount {
	switch v := m[key].(type) {
	case string:
		return models.RepCount(v)
	case int64:
		return models.RepCount(strconv.FormatInt(v, 10))
	case float64:
		return models.RepCount(strconv.FormatFloat(v, 'f', -1, 64))
	}
	return ""
}

// LogFromDocument converts a logs document. Missing or mistyped fields take
// their zero value; cargaAcumulada is kept only when it is numeric.
func LogFromDocument(id string, data map[string]any) models.Log {
	treino := getMap(data, "treino")
	l := models.Log{
		ID:     id,
		UserID: getString(data, "usuarioId"),
		Workout: models.WorkoutRef{
			ID:   getString(treino, "id"),
			Name: getString(treino, "nome"),
		},
		StartedAt:    getTime(data, "horarioInicio"),
		FinishedAt:   getTime(data, "horarioFim"),
		Status:       models.LogStatus(getString(data, "status")),
		CachedVolume: getNumber(data, "cargaAcumulada"),
	}
	for _, raw := range getSlice(data, "exercicios") {
		if m, ok := raw.(map[string]any); ok {
			l.Exercises = append(l.Exercises, exerciseFromMap(m))
		}
	}
	return l
}

func exerciseFromMap(m map[string]any) models.Exercise {
	modelo := getMap(m, "modelo")
	chars := getMap(modelo, "caracteristicas")
	ex := models.Exercise{
		ModelID: getString(m, "modeloId"),
		Model: models.ExerciseModel{
			Name:        getString(modelo, "nome"),
			MuscleGroup: getString(modelo, "grupoMuscular"),
			Characteristics: models.Characteristics{
				Bodyweight: getBool(chars, "isPesoCorporal"),
				Bilateral:  getBool(chars, "isPesoBilateral"),
				Barbell:    getBool(chars, "usaBarra"),
			},
		},
		BarWeight: getKg(m, "pesoBarra"),
	}
	for _, raw := range getSlice(m, "series") {
		s, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		ex.Sets = append(ex.Sets, models.Set{
			Reps:      getReps(s, "repeticoes"),
			Weight:    getKg(s, "peso"),
			TimeBased: getBool(s, "isTimeBased"),
			Completed: getBool(s, "concluido"),
			Type:      models.SetType(getString(s, "type")),
		})
	}
	return ex
}

// BodyweightsFromDocument extracts historicoPeso from a user profile.
// Entries without a date are dropped.
func BodyweightsFromDocument(data map[string]any) []models.BodyweightEntry {
	var out []models.BodyweightEntry
	for _, raw := range getSlice(data, "historicoPeso") {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		date := getTime(m, "data")
		if date == nil {
			continue
		}
		out = append(out, models.BodyweightEntry{Weight: getKg(m, "peso"), Date: *date})
	}
	return out
}
