package service

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/patient-flow/internal/domain"
)

var patientSeq atomic.Uint64

// NewPatientID returns P<epochMillis><sequence>-<12 hex>. The sequence never
// wraps, so ids from one process are distinct even under a frozen clock; the
// random tail keeps replicas and flowctl from minting the same id in a shared
// millisecond.
func NewPatientID(now time.Time) domain.PatientID {
	seq := patientSeq.Add(1)
	return domain.PatientID(fmt.Sprintf("P%d%03d-%s", now.UnixMilli(), seq, randomTail()))
}

// randomTail is the first 48 bits of a v4 uuid, all of them random.
func randomTail() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func newRecordID() string {
	return uuid.NewString()
}
