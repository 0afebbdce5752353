package remote

import (
	"strings"

	"connectrpc.com/connect"
)

// RetryableCode reports whether an RPC failure is transient. Only these four
// transport codes get another attempt; everything else is a final answer from
// the peer.
func RetryableCode(err error) bool {
	switch connect.CodeOf(err) {
	case connect.CodeDeadlineExceeded,
		connect.CodeResourceExhausted,
		connect.CodeAborted,
		connect.CodeUnavailable:
		return true
	default:
		return false
	}
}

// connectionSignatures are the textual categories of relational driver errors
// that indicate a connectivity problem rather than a query problem.
var connectionSignatures = []string{
	"connection",
	"broken pipe",
	"timeout",
	"timed out",
	"refused",
	"reset by peer",
	"i/o",
	"eof",
	"bad conn",
}

// IsConnectionError classifies a relational/driver error as transient by its
// textual category. database/sql exposes no structured category for these.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range connectionSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}
