package ordering

import (
	"fmt"

	"gorm.io/gorm"
)

// Column holding the dense rank in every ordered table.
const Column = "position"

// Scope identifies one set of siblings whose positions form 1..N.
// Topics have no parent and live in a single global scope.
type Scope struct {
	Table        string
	ParentColumn string
	ParentID     uint
}

func TopicScope() Scope { return Scope{Table: "topics"} }

func ModuleScope(topicID uint) Scope {
	return Scope{Table: "modules", ParentColumn: "topic_id", ParentID: topicID}
}

func MainContentScope(moduleID uint) Scope {
	return Scope{Table: "main_contents", ParentColumn: "module_id", ParentID: moduleID}
}

func PageScope(mainContentID uint) Scope {
	return Scope{Table: "pages", ParentColumn: "main_content_id", ParentID: mainContentID}
}

// Key is the lock key of the scope.
func (s Scope) Key() string {
	if s.ParentColumn == "" {
		return s.Table
	}
	return fmt.Sprintf("%s:%s:%d", s.Table, s.ParentColumn, s.ParentID)
}

func (s Scope) String() string { return s.Key() }

func (s Scope) entity() string {
	switch s.Table {
	case "topics":
		return "topic"
	case "modules":
		return "module"
	case "main_contents":
		return "main content"
	case "pages":
		return "page"
	default:
		return s.Table
	}
}

// siblings starts a query restricted to the scope.
func (s Scope) siblings(tx *gorm.DB) *gorm.DB {
	q := tx.Table(s.Table)
	if s.ParentColumn != "" {
		q = q.Where(s.ParentColumn+" = ?", s.ParentID)
	}
	return q
}
