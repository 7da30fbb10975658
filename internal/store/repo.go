package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact purpose match when set
	Student string    // exact student ID match when set
}

// Subscription tiers.
const (
	TierFree   = "free"
	TierFamily = "family"
	TierCoop   = "coop"
)

// Privacy modes.
const (
	PrivacyLocalOnly = "local_only"
	PrivacyCloudSync = "cloud_sync"
)

// Family is a household account.
type Family struct {
	ID               string
	ParentEmail      string
	SubscriptionTier string
	State            string // optional, two-letter code for compliance reporting
	PrivacyMode      string
	CreatedAt        time.Time
}

// LearningPreferences records which presentation styles a student favours.
type LearningPreferences struct {
	Visual bool `json:"visual"`
	Audio  bool `json:"audio"`
	Text   bool `json:"text"`
}

// Student is a learner belonging to a family.
type Student struct {
	ID                  string
	FamilyID            string
	FirstName           string
	Age                 int
	GradeLevel          int
	LearningPreferences LearningPreferences
	AvatarColor         string
	CreatedAt           time.Time
}

// LearningSession is one sitting on one lesson.
type LearningSession struct {
	ID                string
	StudentID         string
	LessonID          string
	Subject           string
	Topic             string
	StartedAt         time.Time
	CompletedAt       *time.Time
	TimeSpentSeconds  int
	Accuracy          float64
	ProblemsAttempted int
	ProblemsCorrect   int
	StruggleDetected  bool
	AIHintsUsed       int
}

// SessionResult is what a finished session reports.
type SessionResult struct {
	TimeSpentSeconds  int
	Accuracy          float64
	ProblemsAttempted int
	ProblemsCorrect   int
	StruggleDetected  bool
	AIHintsUsed       int
}

// ProgressNode tracks a student's mastery of one concept.
type ProgressNode struct {
	ID              string
	StudentID       string
	Concept         string
	Subject         string
	MasteryLevel    float64 // 0..1
	LastPracticed   time.Time
	TotalAttempts   int
	TotalCorrect    int
	DifficultyLevel float64
}

// ProgressUpdate carries the new values for a progress node.
type ProgressUpdate struct {
	MasteryLevel    float64
	TotalAttempts   int
	TotalCorrect    int
	DifficultyLevel float64
}

// ComplianceLog records one day of instruction for state reporting.
type ComplianceLog struct {
	ID              string
	StudentID       string
	LogDate         time.Time // date only, UTC midnight
	SubjectsStudied []string
	TotalMinutes    int
	Notes           string
}

// ComplianceSummary aggregates compliance logs over a date range.
type ComplianceSummary struct {
	StudentID     string
	From, To      time.Time
	Days          int
	TotalMinutes  int
	MinutesPerDay float64
	Subjects      []string
	Logs          []ComplianceLog
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	StudentID    string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLMRequestEventData.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM usage for one purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates LLM usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// StudentUsage aggregates LLM usage for one student on one model.
type StudentUsage struct {
	StudentID    string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append access to domain events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}

// EventQuerier reads back recorded LLM events.
type EventQuerier interface {
	EventRepo
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)
	// GetLLMEvent returns nil when no event has the given id.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
	// LLMUsageByStudent skips requests not attributed to a student.
	LLMUsageByStudent(ctx context.Context) ([]StudentUsage, error)
}

// FamilyRepo manages families.
type FamilyRepo interface {
	CreateFamily(ctx context.Context, f *Family) error
	GetFamily(ctx context.Context, id string) (*Family, error)
	ListFamilies(ctx context.Context) ([]Family, error)
}

// StudentRepo manages students.
type StudentRepo interface {
	CreateStudent(ctx context.Context, s *Student) error
	GetStudent(ctx context.Context, id string) (*Student, error)
	// StudentsByFamily returns a family's students ordered by grade.
	StudentsByFamily(ctx context.Context, familyID string) ([]Student, error)
}

// SessionRepo manages learning sessions.
type SessionRepo interface {
	CreateSession(ctx context.Context, s *LearningSession) error
	CompleteSession(ctx context.Context, id string, result SessionResult) (*LearningSession, error)
	GetSession(ctx context.Context, id string) (*LearningSession, error)
	// RecentSessions returns the newest sessions first. limit <= 0 means 10.
	RecentSessions(ctx context.Context, studentID string, limit int) ([]LearningSession, error)
}

// ProgressRepo manages per-concept mastery.
type ProgressRepo interface {
	GetOrCreateProgressNode(ctx context.Context, studentID, concept, subject string) (*ProgressNode, error)
	UpdateProgress(ctx context.Context, id string, u ProgressUpdate) (*ProgressNode, error)
	// StudentProgress lists nodes by mastery, highest first. An empty
	// subject matches every subject.
	StudentProgress(ctx context.Context, studentID, subject string) ([]ProgressNode, error)
	MasteredConcepts(ctx context.Context, studentID string, threshold float64) ([]string, error)
}

// ComplianceRepo manages daily compliance logs.
type ComplianceRepo interface {
	// LogDailyCompliance inserts or replaces the log for the student and day.
	LogDailyCompliance(ctx context.Context, l *ComplianceLog) error
	ComplianceSummary(ctx context.Context, studentID string, from, to time.Time) (*ComplianceSummary, error)
}
