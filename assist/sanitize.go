package assist

import "strings"

// Sanitize strips wildcard actions and resources from a draft. Generated
// suggestions like "s3:*" or a bare "*" resource would otherwise widen a
// request far past the described use case; dropping them forces the
// requester to name what they actually need.
func Sanitize(draft Draft) Draft {
	out := Draft{
		Description: draft.Description,
		Conditions:  draft.Conditions,
	}

	for _, action := range draft.Actions {
		if strings.Contains(action, "*") {
			continue
		}
		out.Actions = append(out.Actions, action)
	}
	for _, resource := range draft.Resources {
		if resource == "*" || strings.HasSuffix(resource, ":*") {
			continue
		}
		out.Resources = append(out.Resources, resource)
	}
	return out
}
