package protocol

import "time"

// SessionStarted announces a new practice session.
type SessionStarted struct {
	SessionID string    `json:"session_id"`
	Category  string    `json:"category"`
	Level     string    `json:"level"`
	Mode      string    `json:"mode"`
	Words     int       `json:"words"`
	Lives     *int      `json:"lives,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TurnResult carries the outcome of one answered word.
type TurnResult struct {
	SessionID  string    `json:"session_id"`
	Index      int       `json:"index"`
	Word       string    `json:"word"`
	Expected   string    `json:"expected"`
	Recognized *string   `json:"recognized"`
	Outcome    string    `json:"outcome"`
	Points     int       `json:"points"`
	Score      int       `json:"score"`
	Streak     int       `json:"streak"`
	Lives      *int      `json:"lives,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// AchievementUnlocked is published once per newly earned achievement.
type AchievementUnlocked struct {
	SessionID   string    `json:"session_id"`
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// SessionFinished summarises a completed, failed or abandoned session.
type SessionFinished struct {
	SessionID    string    `json:"session_id"`
	Status       string    `json:"status"`
	Score        int       `json:"score"`
	MaxStreak    int       `json:"max_streak"`
	Correct      int       `json:"correct"`
	Attempts     int       `json:"attempts"`
	BestScore    int       `json:"best_score"`
	PersistError string    `json:"persist_error,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// TranscribeRequest asks a remote recognizer to transcribe 16-bit PCM.
type TranscribeRequest struct {
	SessionID  string `json:"session_id,omitempty"`
	Language   string `json:"language"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
	PCM        []byte `json:"pcm"`
}

// TranscribeReply answers a TranscribeRequest.
type TranscribeReply struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
	Error      string  `json:"error,omitempty"`
}

const (
	SubjectSessionStarted      = "speak.session.started"
	SubjectTurnResult          = "speak.turn.result"
	SubjectAchievementUnlocked = "speak.achievement.unlocked"
	SubjectSessionFinished     = "speak.session.finished"
	SubjectTranscribe          = "speak.stt.transcribe"
)
