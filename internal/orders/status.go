package orders

import "fmt"

type Status string

const (
	StatusPending  Status = "pending"
	StatusDiproses Status = "diproses"
	StatusDikirim  Status = "dikirim"
	StatusSelesai  Status = "selesai"
)

var allStatuses = []Status{StatusPending, StatusDiproses, StatusDikirim, StatusSelesai}

func (s Status) String() string { return string(s) }

func (s Status) Valid() bool {
	for _, v := range allStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseStatus maps "" to pending.
func ParseStatus(s string) (Status, error) {
	if s == "" {
		return StatusPending, nil
	}
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// CanTransition: operator boleh pilih status apa saja, urutan
// pending -> diproses -> dikirim -> selesai tidak dipaksa.
func CanTransition(from, to Status) bool {
	return from.Valid() && to.Valid()
}
