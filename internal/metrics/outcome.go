package metrics

import "time"

// Outcome is the normalized result of a single request. FlashKV replies are
// mapped onto HTTP-style status codes.
type Outcome struct {
	Duration   time.Duration // elapsed time including error paths
	StatusCode int           // 0 when no response was obtained
	Success    bool          // response obtained and counted as a success
	Error      string        // set only for transport failures
	ErrorKind  string        // friendly label for Error, used in breakdowns
}

// DurationMillis reports the elapsed time in whole milliseconds.
func (o Outcome) DurationMillis() int64 {
	ms := o.Duration.Milliseconds()
	if ms < 0 {
		return 0
	}
	return ms
}

// TransportFailure reports whether no response was obtained.
func (o Outcome) TransportFailure() bool {
	return o.Error != ""
}

// IsSuccessStatus reports whether code lies in the 2xx range.
func IsSuccessStatus(code int) bool {
	return code >= 200 && code < 300
}
