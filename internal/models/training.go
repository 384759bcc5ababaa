package models

import "time"

// SetType tags a set for display grouping. It never affects load math.
type SetType string

const (
	SetNormal  SetType = "normal"
	SetDropset SetType = "dropset"
)

// Set is one logged attempt within an exercise.
type Set struct {
	Reps      RepCount `json:"repeticoes"`
	Weight    Kg       `json:"peso"`
	TimeBased bool     `json:"isTimeBased,omitempty"`
	Completed bool     `json:"concluido"`
	Type      SetType  `json:"type,omitempty"`
}

// Characteristics classifies how an exercise is loaded.
type Characteristics struct {
	Bodyweight bool `json:"isPesoCorporal"`
	Bilateral  bool `json:"isPesoBilateral"`
	Barbell    bool `json:"usaBarra"`
}

// ExerciseModel is the static definition an exercise instance points to.
type ExerciseModel struct {
	Name            string          `json:"nome"`
	MuscleGroup     string          `json:"grupoMuscular,omitempty"`
	Characteristics Characteristics `json:"caracteristicas"`
}

// Exercise is one exercise instance inside a logged or planned workout.
// Sets are kept in performance order; drop-sets follow their parent set.
type Exercise struct {
	ModelID   string        `json:"modeloId"`
	Model     ExerciseModel `json:"modelo"`
	BarWeight Kg            `json:"pesoBarra,omitempty"`
	Sets      []Set         `json:"series"`
}

// WorkoutRef points at the workout template a log was performed from.
type WorkoutRef struct {
	ID   string `json:"id"`
	Name string `json:"nome,omitempty"`
}

// LogStatus is the lifecycle state of a workout session.
type LogStatus string

const (
	StatusCompleted  LogStatus = "concluido"
	StatusCancelled  LogStatus = "cancelado"
	StatusInProgress LogStatus = "em_andamento"
)

// Log is one workout session. CachedVolume mirrors the document field
// cargaAcumulada and is only set when the stored value was a number.
type Log struct {
	ID           string     `json:"id"`
	UserID       string     `json:"usuarioId,omitempty"`
	Workout      WorkoutRef `json:"treino"`
	Exercises    []Exercise `json:"exercicios"`
	StartedAt    *time.Time `json:"horarioInicio,omitempty"`
	FinishedAt   *time.Time `json:"horarioFim,omitempty"`
	Status       LogStatus  `json:"status,omitempty"`
	CachedVolume *float64   `json:"cargaAcumulada,omitempty"`
}

// InProgress reports whether the session has not been finalized.
func (l *Log) InProgress() bool {
	return l.FinishedAt == nil
}

// Cancelled reports whether the session was abandoned.
func (l *Log) Cancelled() bool {
	return l.Status == StatusCancelled
}

// HasExercise reports whether the log contains an instance of the given
// exercise definition.
func (l *Log) HasExercise(modelID string) bool {
	return l.FindExercise(modelID) != nil
}

// FindExercise returns the first exercise instance matching modelID, or nil.
func (l *Log) FindExercise(modelID string) *Exercise {
	for i := range l.Exercises {
		if l.Exercises[i].ModelID == modelID {
			return &l.Exercises[i]
		}
	}
	return nil
}

// SetCount returns the number of logged sets across all exercises.
func (l *Log) SetCount() int {
	n := 0
	for _, ex := range l.Exercises {
		n += len(ex.Sets)
	}
	return n
}

// DedupLogs collapses logs sharing an ID. Each ID keeps the position of its
// first occurrence and the contents of its last. The input is not modified.
func DedupLogs(logs []Log) []Log {
	out := make([]Log, 0, len(logs))
	index := make(map[string]int, len(logs))
	for _, l := range logs {
		if i, ok := index[l.ID]; ok {
			out[i] = l
			continue
		}
		index[l.ID] = len(out)
		out = append(out, l)
	}
	return out
}

// BodyweightEntry is one point in a user's weight history.
type BodyweightEntry struct {
	Weight Kg        `json:"peso"`
	Date   time.Time `json:"data"`
}

// LogPayload is the ingest envelope used by the REST API and the uploader.
type LogPayload struct {
	Logs        []Log             `json:"logs"`
	Bodyweights []BodyweightEntry `json:"bodyweights,omitempty"`
}
