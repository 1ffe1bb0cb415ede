package domain

import "time"

type ChecklistStatus string

const (
	ChecklistOpen       ChecklistStatus = "OPEN"
	ChecklistIncomplete ChecklistStatus = "INCOMPLETE"
	ChecklistCompleted  ChecklistStatus = "COMPLETED"
)

type ItemStatus string

const (
	ItemPending       ItemStatus = "PENDING"
	ItemCompleted     ItemStatus = "COMPLETED"
	ItemNotApplicable ItemStatus = "NOT_APPLICABLE"
	ItemFailed        ItemStatus = "FAILED"
)

type AnswerType string

const (
	AnswerBoolean AnswerType = "BOOLEAN"
	AnswerScore   AnswerType = "SCORE"
	AnswerText    AnswerType = "TEXT"
	AnswerChoice  AnswerType = "CHOICE"
)

// ChecklistTemplate scopes an ordered task definition to
// (company, site, division, role, shift). A NULL site means global; NULL
// role/shift are wildcards on that axis. Read-only to the sync pipeline.
type ChecklistTemplate struct {
	ID        int64   `gorm:"primaryKey;autoIncrement"`
	CompanyID int64   `gorm:"not null;index:idx_checklist_template_scope"`
	SiteID    *int64  `gorm:"index:idx_checklist_template_scope"`
	Division  string  `gorm:"type:text;not null;index:idx_checklist_template_scope"`
	Role      *string `gorm:"type:text"`
	ShiftType *string `gorm:"type:text"`
	Active    bool    `gorm:"not null;default:true"`
	Position  int     `gorm:"not null;default:0"`

	Items []ChecklistTemplateItem `gorm:"foreignKey:TemplateID"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`
}

type ChecklistTemplateItem struct {
	ID           int64      `gorm:"primaryKey;autoIncrement"`
	TemplateID   int64      `gorm:"not null;index"`
	Position     int        `gorm:"not null"`
	Title        string     `gorm:"type:text;not null"`
	Required     bool       `gorm:"not null;default:false"`
	EvidenceType string     `gorm:"type:text"`
	KpiKey       *string    `gorm:"type:text"`
	AnswerType   AnswerType `gorm:"type:text;not null;default:'BOOLEAN'"`
}

// Checklist is the per-user, per-day materialization of a template. The
// composite unique index is the natural key the pipeline looks up by; it is
// what keeps two racing materializations from creating duplicates.
type Checklist struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	CompanyID   int64     `gorm:"not null;uniqueIndex:ux_checklist_natural"`
	SiteID      int64     `gorm:"not null;uniqueIndex:ux_checklist_natural"`
	UserID      int64     `gorm:"not null;uniqueIndex:ux_checklist_natural"`
	ShiftDate   time.Time `gorm:"type:date;not null;uniqueIndex:ux_checklist_natural"`
	Division    string    `gorm:"type:text;not null;uniqueIndex:ux_checklist_natural"`
	ContextType string    `gorm:"type:text;not null;uniqueIndex:ux_checklist_natural"`
	ContextID   int64     `gorm:"not null;uniqueIndex:ux_checklist_natural"`

	TemplateID  int64           `gorm:"not null"`
	Status      ChecklistStatus `gorm:"type:text;not null;default:'OPEN'"`
	CompletedAt *time.Time

	Items []ChecklistItem `gorm:"foreignKey:ChecklistID"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`
}

// ChecklistItem is a snapshot copy of a template item taken at
// materialization time; later template edits never reach existing items.
type ChecklistItem struct {
	ID          int64 `gorm:"primaryKey;autoIncrement"`
	ChecklistID int64 `gorm:"not null;index"`

	TemplateItemID int64      `gorm:"not null"`
	Position       int        `gorm:"not null"`
	Title          string     `gorm:"type:text;not null"`
	Required       bool       `gorm:"not null;default:false"`
	EvidenceType   string     `gorm:"type:text"`
	KpiKey         *string    `gorm:"type:text"`
	AnswerType     AnswerType `gorm:"type:text;not null;default:'BOOLEAN'"`

	Status      ItemStatus `gorm:"type:text;not null;default:'PENDING'"`
	CompletedAt *time.Time

	AnswerBool  *bool
	AnswerScore *int
	AnswerText  *string

	Lat             *float64
	Lng             *float64
	MockLocation    bool `gorm:"not null;default:false"`
	EvidencePhotoID *int64

	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`
}

const ContextTypeZone = "ZONE"
