package validation

// StubValidator accepts every payload unless ValidateStructFunc says otherwise.
type StubValidator struct {
	ValidateStructFunc func(any) map[string]string
	Validated          []any
}

var _ Validator = (*StubValidator)(nil)

func (s *StubValidator) ValidateStruct(st any) map[string]string {
	s.Validated = append(s.Validated, st)
	if s.ValidateStructFunc == nil {
		return nil
	}
	return s.ValidateStructFunc(st)
}
