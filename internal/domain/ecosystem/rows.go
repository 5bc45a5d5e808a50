package ecosystem

import (
	"time"

	"gorm.io/datatypes"
)

// BookRow is the persisted book header. Ordinal keeps import order across
// restarts.
type BookRow struct {
	VUID      string    `gorm:"column:vuid;primaryKey" json:"vuid"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	PageCount int       `gorm:"column:page_count;not null;default:0" json:"page_count"`
	Ordinal   int64     `gorm:"column:ordinal;not null;index" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (BookRow) TableName() string { return "book" }

type DomainRow struct {
	BookVUID string         `gorm:"column:book_vuid;primaryKey" json:"book_vuid"`
	Words    datatypes.JSON `gorm:"column:words" json:"words"`
}

func (DomainRow) TableName() string { return "domain_vocabulary" }

// InnovationRow holds one page. Pages without marked terms still get a row
// so the page list survives a reload.
type InnovationRow struct {
	BookVUID string         `gorm:"column:book_vuid;primaryKey" json:"book_vuid"`
	PageVUID string         `gorm:"column:page_vuid;primaryKey" json:"page_vuid"`
	CVUID    string         `gorm:"column:cvuid;index" json:"cvuid"`
	Position int            `gorm:"column:position;not null" json:"position"`
	Title    string         `gorm:"column:title" json:"title"`
	Words    datatypes.JSON `gorm:"column:words" json:"words"`
}

func (InnovationRow) TableName() string { return "innovation_vocabulary" }

type QuestionRow struct {
	BookVUID    string         `gorm:"column:book_vuid;primaryKey" json:"book_vuid"`
	PageVUID    string         `gorm:"column:page_vuid;primaryKey" json:"page_vuid"`
	ExerciseUID string         `gorm:"column:exercise_uid;primaryKey" json:"uid"`
	Position    int            `gorm:"column:position;primaryKey" json:"position"`
	Ordinal     int            `gorm:"column:ordinal;not null" json:"-"`
	CVUID       string         `gorm:"column:cvuid;index" json:"cvuid"`
	StemWords   datatypes.JSON `gorm:"column:stem_words" json:"stem_words"`
	OptionWords datatypes.JSON `gorm:"column:option_words" json:"option_words"`
}

func (QuestionRow) TableName() string { return "question_vocabulary" }

// Tables is the flattened form produced by the importer and written by the
// persistence layer.
type Tables struct {
	Books      []BookRow
	Domain     []DomainRow
	Innovation []InnovationRow
	Questions  []QuestionRow
}

// BookVUIDs lists the books covered by t in order.
func (t Tables) BookVUIDs() []string {
	out := make([]string, 0, len(t.Books))
	for _, b := range t.Books {
		out = append(out, b.VUID)
	}
	return out
}

func (t Tables) Empty() bool {
	return len(t.Books) == 0
}

// Models lists every row type for migrations.
func Models() []any {
	return []any{&BookRow{}, &DomainRow{}, &InnovationRow{}, &QuestionRow{}}
}
