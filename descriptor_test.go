package heritage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifier(t *testing.T) {
	t.Parallel()
	getter := func(*Object) any { return nil }
	tests := []struct {
		name                               string
		d                                  *Descriptor
		accessor, data, callable, plainVal bool
	}{
		{"nil", nil, false, false, false, false},
		{"empty", &Descriptor{}, false, false, false, false},
		{"malformed", &Descriptor{Get: getter, data: true}, false, false, false, false},
		{"getter", Property(getter, nil), true, false, false, false},
		{"setter only", Property(nil, func(*Object, any) {}), true, false, false, false},
		{"value", Field(3), false, true, false, true},
		{"nil value", Field(nil), false, true, false, true},
		{"method", named("X", "m"), false, true, true, false},
		{"factory value", Field(NewFactory("F", nil, nil)), false, true, true, false},
		{"nil method", Field((*Method)(nil)), false, true, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.accessor, IsAccessor(tt.d), "IsAccessor")
			assert.Equal(t, tt.data, IsData(tt.d), "IsData")
			assert.Equal(t, tt.callable, IsCallable(tt.d), "IsCallable")
			assert.Equal(t, tt.plainVal, IsPlainValue(tt.d), "IsPlainValue")
		})
	}
}

func TestMethod_InvokeNil(t *testing.T) {
	t.Parallel()
	var m *Method
	_, err := m.Invoke(NewObject())
	assert.ErrorIs(t, err, ErrNotCallable)
}
