package internaldefs

import (
	sessionauth "github.com/interviewly/sessionauth"
)

// CounterDef binds a metric ID to its exported name and help text. Both
// exporters iterate this list so the two surfaces always agree.
type CounterDef struct {
	ID   sessionauth.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter.
var CounterDefs = []CounterDef{
	{ID: sessionauth.MetricLoginSuccess, Name: "sessionauth_login_success_total", Help: "Successful login attempts."},
	{ID: sessionauth.MetricLoginFailure, Name: "sessionauth_login_failure_total", Help: "Failed login attempts."},
	{ID: sessionauth.MetricRefreshSuccess, Name: "sessionauth_refresh_success_total", Help: "Successful refresh rotations."},
	{ID: sessionauth.MetricRefreshFailure, Name: "sessionauth_refresh_failure_total", Help: "Failed refresh attempts."},
	{ID: sessionauth.MetricRefreshReuseDetected, Name: "sessionauth_refresh_reuse_detected_total", Help: "Refresh tokens rejected as reused or superseded."},
	{ID: sessionauth.MetricLogout, Name: "sessionauth_logout_total", Help: "Logout operations."},
	{ID: sessionauth.MetricRegisterSuccess, Name: "sessionauth_register_success_total", Help: "Successful account creations."},
	{ID: sessionauth.MetricRegisterDuplicate, Name: "sessionauth_register_duplicate_total", Help: "Account creations rejected as duplicate."},
	{ID: sessionauth.MetricPasswordChangeSuccess, Name: "sessionauth_password_change_success_total", Help: "Successful password changes."},
	{ID: sessionauth.MetricPasswordChangeFailure, Name: "sessionauth_password_change_failure_total", Help: "Failed password changes."},
}
