package plan

import (
	"fmt"
	"regexp"
)

// nameRegex keeps step names usable as HCL traversal segments and report keys.
var nameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// ValidName reports whether s can be used as a step name.
func ValidName(s string) bool {
	return nameRegex.MatchString(s)
}

// Validate checks that step names are well-formed and unique, and that every
// reference (argument or depends_on) names a step appearing strictly earlier.
// It is pure: calling it any number of times on the same plan yields the same
// verdict.
func (p *Plan) Validate() error {
	if p.Len() == 0 {
		return nil
	}

	// position of every declared name, to tell forward from unknown references.
	declared := make(map[string]int, len(p.Steps))
	for i, s := range p.Steps {
		if s == nil {
			return &InvalidPlanError{Index: i, Violation: ViolationInvalidName, Detail: "nil step"}
		}
		if !ValidName(s.Name) {
			return &InvalidPlanError{Step: s.Name, Index: i, Violation: ViolationInvalidName,
				Detail: fmt.Sprintf("must match %s", nameRegex.String())}
		}
		if s.Descriptor == "" {
			return &InvalidPlanError{Step: s.Name, Index: i, Violation: ViolationMissingDescriptor}
		}
		if first, dup := declared[s.Name]; dup {
			return &InvalidPlanError{Step: s.Name, Index: i, Violation: ViolationDuplicateName,
				Detail: fmt.Sprintf("already declared by step #%d", first+1)}
		}
		declared[s.Name] = i
	}

	for i, s := range p.Steps {
		for _, ref := range s.References() {
			if err := checkReference(declared, s.Name, i, ref); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkReference(declared map[string]int, step string, index int, ref string) error {
	if ref == step {
		return &InvalidPlanError{Step: step, Index: index, Violation: ViolationSelfReference, Reference: ref}
	}
	at, ok := declared[ref]
	if !ok {
		return &InvalidPlanError{Step: step, Index: index, Violation: ViolationUnknownReference, Reference: ref}
	}
	if at > index {
		return &InvalidPlanError{Step: step, Index: index, Violation: ViolationForwardReference, Reference: ref,
			Detail: fmt.Sprintf("declared later as step #%d", at+1)}
	}
	return nil
}

// Validated returns the plan unchanged when it is valid.
func Validated(p *Plan) (*Plan, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
