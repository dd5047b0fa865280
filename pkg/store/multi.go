package store

import "errors"

// multi fans each operation out to every backend. Errors are joined
// so one failing backend never hides the others' records.
type multi struct {
	backends []Store
}

var _ Store = (*multi)(nil)

// Multi combines stores into one. A single store is returned as-is.
func Multi(stores ...Store) Store {
	if len(stores) == 1 {
		return stores[0]
	}
	return &multi{backends: stores}
}

func (m *multi) Append(rec Record) error {
	var errs []error
	for _, s := range m.backends {
		if err := s.Append(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *multi) Flush() error {
	var errs []error
	for _, s := range m.backends {
		if err := s.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *multi) Close() error {
	var errs []error
	for _, s := range m.backends {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
