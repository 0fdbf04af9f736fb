package synth

import (
	"strings"
	"unicode"
)

// Synthesize assembles a policy document from the given service selections.
// One statement is produced per selection with Effect Allow, the selection's
// actions namespaced to the service, and every resource fully qualified via
// the (provider, service) format table.
//
// Synthesis fails closed:
//   - no selections: *EmptySelectionError
//   - a selection missing its required config field: *MissingServiceConfigError
//   - a selection with no resolvable resources, or an unknown
//     (provider, service) pair: *UnresolvedResourceError
//
// The returned document never contains a bare "*" resource in any statement.
func Synthesize(provider, region, accountID string, selections []ServiceSelection) (*PolicyDocument, error) {
	if len(selections) == 0 {
		return nil, &EmptySelectionError{}
	}

	doc := &PolicyDocument{Version: PolicyVersion}

	for _, sel := range selections {
		stmt, err := synthesizeStatement(provider, region, accountID, sel)
		if err != nil {
			return nil, err
		}
		doc.Statement = append(doc.Statement, stmt)
	}

	// The format table cannot produce a bare wildcard, but the invariant is
	// load-bearing enough to assert on the assembled document as well.
	for _, stmt := range doc.Statement {
		for _, r := range stmt.Resource {
			if r == "*" {
				return nil, &UnresolvedResourceError{Service: stmt.Sid}
			}
		}
	}

	return doc, nil
}

func synthesizeStatement(provider, region, accountID string, sel ServiceSelection) (Statement, error) {
	key := formatKey{provider: provider, service: sel.ServiceID}

	if field, ok := requiredConfig[key]; ok {
		if sel.Config[field] == "" {
			return Statement{}, &MissingServiceConfigError{Service: sel.ServiceID, Field: field}
		}
	}

	format, known := resourceFormats[key]
	if !known {
		// Unknown services fail rather than fall back to a wildcard.
		return Statement{}, &UnresolvedResourceError{Service: sel.ServiceID}
	}

	var resources []string
	for _, ref := range sel.Resources {
		if ref.ID == "" || ref.ID == "*" {
			continue
		}
		resources = append(resources, format(region, accountID, ref, sel.Config)...)
	}
	resources = append(resources, configResource(provider, sel.ServiceID, region, accountID, sel.Config)...)

	if len(resources) == 0 {
		return Statement{}, &UnresolvedResourceError{Service: sel.ServiceID}
	}

	return Statement{
		Sid:       statementSid(sel.ServiceID),
		Effect:    "Allow",
		Action:    namespaceActions(sel.ServiceID, sel.Actions),
		Resource:  dedupe(resources),
		Condition: tagConditions(sel),
	}, nil
}

// namespaceActions qualifies bare action names with their service prefix.
// An action already containing ":" is kept as supplied.
func namespaceActions(serviceID string, actions []string) []string {
	out := make([]string, 0, len(actions))
	for _, a := range actions {
		if a == "" {
			continue
		}
		if strings.Contains(a, ":") {
			out = append(out, a)
			continue
		}
		out = append(out, serviceID+":"+a)
	}
	return out
}

// tagConditions builds an EC2 resource-tag condition block from the
// selection's "tags" config (format: key1=value1,key2=value2).
func tagConditions(sel ServiceSelection) map[string]map[string]string {
	if sel.ServiceID != "ec2" {
		return nil
	}
	raw := sel.Config["tags"]
	if raw == "" {
		return nil
	}

	equals := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		equals["ec2:ResourceTag/"+key] = value
	}
	if len(equals) == 0 {
		return nil
	}

	return map[string]map[string]string{"StringEquals": equals}
}

// statementSid derives an alphanumeric statement identifier from the
// service name (e.g. "secretsmanager" -> "SecretsmanagerAccess").
func statementSid(serviceID string) string {
	var b strings.Builder
	upper := true
	for _, r := range serviceID {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	b.WriteString("Access")
	return b.String()
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
