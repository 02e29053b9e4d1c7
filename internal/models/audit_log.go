package models

// AuditAction names a state change worth keeping a trail of.
type AuditAction string

const (
	AuditRegister       AuditAction = "REGISTER"
	AuditLogin          AuditAction = "LOGIN"
	AuditUpdateRole     AuditAction = "UPDATE_ROLE"
	AuditCreateExpense  AuditAction = "CREATE_EXPENSE"
	AuditUpdateExpense  AuditAction = "UPDATE_EXPENSE"
	AuditDeleteExpense  AuditAction = "DELETE_EXPENSE"
	AuditSubmitExpense  AuditAction = "SUBMIT_EXPENSE"
	AuditApproveExpense AuditAction = "APPROVE_EXPENSE"
	AuditRejectExpense  AuditAction = "REJECT_EXPENSE"
)

// AuditResource is the kind of record an audit entry points at.
type AuditResource string

const (
	AuditResourceUser    AuditResource = "user"
	AuditResourceExpense AuditResource = "expense"
)

// AuditLog is one recorded action of ActorID on a user or an expense.
// Changes holds a JSON object of the fields the action set.
type AuditLog struct {
	Base
	ActorID      string        `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Action       AuditAction   `gorm:"type:varchar(50);not null" json:"action"`
	ResourceType AuditResource `gorm:"type:varchar(50);not null" json:"resource_type"`
	ResourceID   string        `gorm:"index" json:"resource_id"`
	IPAddress    string        `gorm:"size:45" json:"ip_address"`
	Changes      string        `json:"changes,omitempty"`
}
