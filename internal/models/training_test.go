package models

import (
	"encoding/json"
	"testing"
	"time"
)

const sampleLogJSON = `{
  "id": "log-7",
  "usuarioId": "uid-1",
  "treino": {"id": "treino-a", "nome": "Treino A"},
  "horarioInicio": "2026-03-02T18:30:00Z",
  "horarioFim": {"_seconds": 1772480400, "_nanoseconds": 0},
  "status": "concluido",
  "cargaAcumulada": 1250.5,
  "exercicios": [
    {
      "modeloId": "supino",
      "modelo": {"nome": "Supino reto", "grupoMuscular": "Peito",
                 "caracteristicas": {"isPesoCorporal": false, "isPesoBilateral": true, "usaBarra": true}},
      "pesoBarra": "20",
      "series": [
        {"repeticoes": "8-12", "peso": 40, "concluido": true},
        {"repeticoes": 6, "peso": "35.5", "concluido": false, "type": "dropset"},
        {"repeticoes": null, "peso": "pesado"}
      ]
    }
  ]
}`

// TestLogUnmarshal verifies that a loosely typed log document decodes into
// the canonical schema with numeric coercion applied.
func TestLogUnmarshal(t *testing.T) {
	var l Log
	if err := json.Unmarshal([]byte(sampleLogJSON), &l); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if l.ID != "log-7" || l.Workout.ID != "treino-a" {
		t.Errorf("id = %q, treino = %q", l.ID, l.Workout.ID)
	}
	if l.StartedAt == nil || !l.StartedAt.Equal(time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC)) {
		t.Errorf("StartedAt = %v", l.StartedAt)
	}
	if l.FinishedAt == nil || l.FinishedAt.Unix() != 1772480400 {
		t.Errorf("FinishedAt = %v", l.FinishedAt)
	}
	if l.CachedVolume == nil || *l.CachedVolume != 1250.5 {
		t.Errorf("CachedVolume = %v, want 1250.5", l.CachedVolume)
	}
	if l.Status != StatusCompleted {
		t.Errorf("Status = %q", l.Status)
	}

	ex := l.Exercises[0]
	if ex.BarWeight != 20 {
		t.Errorf("BarWeight = %v, want 20", ex.BarWeight)
	}
	if !ex.Model.Characteristics.Bilateral || !ex.Model.Characteristics.Barbell {
		t.Errorf("characteristics = %+v", ex.Model.Characteristics)
	}
	if len(ex.Sets) != 3 {
		t.Fatalf("sets = %d, want 3", len(ex.Sets))
	}
	if ex.Sets[0].Reps != "8-12" || ex.Sets[0].Weight != 40 || !ex.Sets[0].Completed {
		t.Errorf("set 0 = %+v", ex.Sets[0])
	}
	if ex.Sets[1].Reps != "6" || ex.Sets[1].Weight != 35.5 || ex.Sets[1].Type != SetDropset {
		t.Errorf("set 1 = %+v", ex.Sets[1])
	}
	if ex.Sets[2].Reps != "" || ex.Sets[2].Weight != 0 || ex.Sets[2].Completed {
		t.Errorf("set 2 = %+v", ex.Sets[2])
	}
}

// TestLogCachedVolumeNonNumeric verifies that a non-numeric cargaAcumulada is
// dropped so callers fall back to recomputation.
func TestLogCachedVolumeNonNumeric(t *testing.T) {
	for _, raw := range []string{`"500"`, `null`, `true`} {
		var l Log
		if err := json.Unmarshal([]byte(`{"id":"x","cargaAcumulada":`+raw+`}`), &l); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if l.CachedVolume != nil {
			t.Errorf("cargaAcumulada %s: CachedVolume = %v, want nil", raw, *l.CachedVolume)
		}
	}
}

// TestLogTimestampForms verifies the accepted timestamp encodings.
func TestLogTimestampForms(t *testing.T) {
	want := time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC)
	forms := []string{
		`"2026-01-05T07:00:00Z"`,
		`1767596400000`,
		`{"seconds": 1767596400}`,
	}
	for _, f := range forms {
		var l Log
		if err := json.Unmarshal([]byte(`{"id":"x","horarioInicio":`+f+`}`), &l); err != nil {
			t.Fatalf("unmarshal %s: %v", f, err)
		}
		if l.StartedAt == nil || !l.StartedAt.Equal(want) {
			t.Errorf("horarioInicio %s: got %v, want %v", f, l.StartedAt, want)
		}
		if !l.InProgress() {
			t.Errorf("horarioInicio %s: log without horarioFim should be in progress", f)
		}
	}
}

// TestLogMarshalRoundTrip verifies that the canonical form re-decodes
// unchanged, which the uploader and the JSONB column rely on.
func TestLogMarshalRoundTrip(t *testing.T) {
	var l Log
	if err := json.Unmarshal([]byte(sampleLogJSON), &l); err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(l)
	if err != nil {
		t.Fatal(err)
	}
	var back Log
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !back.StartedAt.Equal(*l.StartedAt) || *back.CachedVolume != *l.CachedVolume {
		t.Errorf("round trip mismatch: %+v vs %+v", back, l)
	}
	if back.Exercises[0].Sets[1].Reps != "6" {
		t.Errorf("reps = %q, want 6", back.Exercises[0].Sets[1].Reps)
	}
}

// TestFindExercise verifies exercise lookup by definition id.
func TestFindExercise(t *testing.T) {
	l := Log{Exercises: []Exercise{{ModelID: "a"}, {ModelID: "b", Sets: []Set{{}, {}}}}}
	if ex := l.FindExercise("b"); ex == nil || len(ex.Sets) != 2 {
		t.Errorf("FindExercise(b) = %+v", ex)
	}
	if l.HasExercise("c") {
		t.Error("HasExercise(c) = true, want false")
	}
	if n := l.SetCount(); n != 2 {
		t.Errorf("SetCount = %d, want 2", n)
	}
}

// TestBodyweightEntryUnmarshal verifies string weights and Firestore-style dates.
func TestBodyweightEntryUnmarshal(t *testing.T) {
	var b BodyweightEntry
	if err := json.Unmarshal([]byte(`{"peso":"81.4","data":{"_seconds":1767596400}}`), &b); err != nil {
		t.Fatal(err)
	}
	if b.Weight != 81.4 {
		t.Errorf("Weight = %v, want 81.4", b.Weight)
	}
	if b.Date.Unix() != 1767596400 {
		t.Errorf("Date = %v", b.Date)
	}
}

// TestRepCountNumberForms verifies that numeric rep values decode to plain
// decimal text whatever their JSON spelling.
func TestRepCountNumberForms(t *testing.T) {
	tests := map[string]RepCount{
		`12`:     "12",
		`1e2`:    "100",
		`12.0`:   "12",
		`"8-12"`: "8-12",
		`null`:   "",
	}
	for in, want := range tests {
		var r RepCount
		if err := json.Unmarshal([]byte(in), &r); err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if r != want {
			t.Errorf("RepCount(%s) = %q, want %q", in, r, want)
		}
	}
}

// TestDedupLogs verifies that a repeated ID keeps its first position and its
// last contents.
func TestDedupLogs(t *testing.T) {
	in := []Log{
		{ID: "a", Status: StatusInProgress},
		{ID: "b"},
		{ID: "a", Status: StatusCompleted},
	}
	got := DedupLogs(in)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "a" || got[0].Status != StatusCompleted || got[1].ID != "b" {
		t.Errorf("got = %+v", got)
	}
	if in[0].Status != StatusInProgress {
		t.Error("input was modified")
	}
}
