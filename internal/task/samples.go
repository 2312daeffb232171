package task

import "sort"

// Canned tasks used to exercise each risk tier end to end.
var samples = map[string]Task{
	"supervision": {
		Name:        "Supervision Task - High Oversight Required",
		Description: "Critical operation requiring human approval",
		Actions: []Action{
			{Type: "verify_identity", Data: StringData("user_123")},
			{Type: "check_permissions", Data: StringData("admin_level")},
			{Type: "log_action", Data: StringData("supervision_check")},
		},
	},
	"standard": {
		Name:        "Standard Task - Normal Operations",
		Description: "Regular task with moderate complexity",
		Actions: []Action{
			{Type: "fetch_data", Data: StringData("records")},
			{Type: "update", Data: StringData("status_field")},
			{Type: "notify", Data: StringData("team_channel")},
		},
	},
	"green": {
		Name:        "Green Risk Task - Safe Operations",
		Description: "Low-risk task with well-tested actions",
		Actions: []Action{
			{Type: "read_data", Data: StringData("user_profile")},
			{Type: "log", Data: StringData("access_time")},
		},
	},
	"red": {
		Name:        "Red Risk Task - High-Risk Operations",
		Description: "Dangerous task requiring extreme caution",
		Actions: []Action{
			{Type: "delete", Data: StringData("user_account")},
			{Type: "charge", Data: StringData("payment_$500")},
			{Type: "refund", Data: StringData("transaction_xyz")},
			{Type: "cancel_subscription", Data: StringData("premium_plan")},
		},
	},
}

// Sample returns a copy of the canned task registered under kind.
func Sample(kind string) (Task, bool) {
	t, ok := samples[kind]
	if !ok {
		return Task{}, false
	}
	t.Actions = append([]Action(nil), t.Actions...)
	return t, true
}

// SampleKinds lists the registered sample names in sorted order.
func SampleKinds() []string {
	kinds := make([]string, 0, len(samples))
	for kind := range samples {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
