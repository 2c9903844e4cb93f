package usercontext

// Shared Locals/session keys used across controllers and middlewares
const (
	AuthKey          = "authenticated"
	KeyUserID        = "user_id"
	KeyUsername      = "username"
	KeyUserEmail     = "user_email"
	KeyIsAdmin       = "isAdmin"
	KeyFromProtected = "from_protected"

	// KeyAppliedCoupon holds the coupon code the user applied for the current
	// checkout session. Session-scoped on purpose: the applied coupon is
	// per-user state, never a process-wide value.
	KeyAppliedCoupon = "applied_coupon"
)
