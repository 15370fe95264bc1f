package cases

import "time"

// Case statuses are a fixed lifecycle set carried over from the collection
// workflow; codes are stored, Vietnamese display labels travel with them.
const (
	StatusNew        = "moi"
	StatusProcessing = "dang_xu_ly"
	StatusCommitted  = "cam_ket_tra"
	StatusLitigation = "khoi_kien"
	StatusRecovered  = "da_thu_hoi"
	StatusClosed     = "dong"
)

var StatusLabels = map[string]string{
	StatusNew:        "Mới",
	StatusProcessing: "Đang xử lý",
	StatusCommitted:  "Cam kết trả nợ",
	StatusLitigation: "Khởi kiện",
	StatusRecovered:  "Đã thu hồi",
	StatusClosed:     "Đóng",
}

func IsValidStatus(status string) bool {
	_, ok := StatusLabels[status]
	return ok
}

const (
	CaseTypeInternal = "internal"
	CaseTypeExternal = "external"
)

// VisibleDebtGroups is a global visibility invariant, not a permission: no
// query surface anywhere returns cases outside these risk buckets.
var VisibleDebtGroups = []int{3, 4, 5}

type Case struct {
	ID                   int64     `json:"id"`
	CaseID               string    `json:"case_id"`
	CustomerName         string    `json:"customer_name"`
	CustomerIDNumber     string    `json:"customer_id_number,omitempty"`
	OutstandingAmount    float64   `json:"outstanding_amount"`
	CaseType             string    `json:"case_type"`
	Status               string    `json:"status"`
	StatusLabel          string    `json:"status_label,omitempty"`
	DebtGroup            int       `json:"debt_group"`
	AssignedEmployeeCode string    `json:"assigned_employee_code"`
	Department           string    `json:"department"`
	BranchCode           string    `json:"branch_code"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type Activity struct {
	ID           int64     `json:"id"`
	CaseID       string    `json:"case_id"`
	EmployeeCode string    `json:"employee_code"`
	ActivityType string    `json:"activity_type"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
}

const (
	ActivityTypeNote         = "note"
	ActivityTypeStatusChange = "status_change"
	ActivityTypeTransfer     = "transfer"
)
