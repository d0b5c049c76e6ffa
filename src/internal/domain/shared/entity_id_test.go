package shared_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCustomerMarker struct{}
type testSalonMarker struct{}

type testCustomerID = shared.EntityID[testCustomerMarker]

// mockDomainError 模擬各 bounded context 的 DomainError
type mockDomainError struct {
	message string
	context map[string]interface{}
}

func (e *mockDomainError) Error() string {
	return e.message
}

func (e *mockDomainError) WithContext(keyValues ...interface{}) error {
	ctx := make(map[string]interface{})
	for i := 0; i+1 < len(keyValues); i += 2 {
		ctx[keyValues[i].(string)] = keyValues[i+1]
	}
	return &mockDomainError{message: e.message, context: ctx}
}

var errInvalidCustomer = &mockDomainError{message: "invalid customer ID"}
var errInvalidSalon = &mockDomainError{message: "invalid salon ID"}

func TestNewEntityID_GeneratesUniqueUUIDs(t *testing.T) {
	// Act
	id1 := shared.NewEntityID[testCustomerMarker]()
	id2 := shared.NewEntityID[testCustomerMarker]()

	// Assert
	assert.False(t, id1.IsEmpty())
	assert.NotEqual(t, id1.String(), id2.String(), "每次生成的 UUID 應該不同")
}

func TestEntityIDFromString_ValidUUID_NormalizesToLowercase(t *testing.T) {
	// Act
	id, err := shared.EntityIDFromString[testCustomerMarker]("550E8400-E29B-41D4-A716-446655440000", errInvalidCustomer)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", id.String())
}

func TestEntityIDFromString_InvalidUUID_ReturnsTemplateWithContext(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"空字串", ""},
		{"不是 UUID 格式", "not-a-uuid"},
		{"部分 UUID", "550e8400-e29b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			id, err := shared.EntityIDFromString[testCustomerMarker](tt.value, errInvalidCustomer)

			// Assert
			require.Error(t, err)
			assert.True(t, id.IsEmpty(), "解析失敗應該返回空 ID")

			var domainErr *mockDomainError
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, "invalid customer ID", domainErr.message)
			assert.Equal(t, tt.value, domainErr.context["input"])
			assert.NotNil(t, domainErr.context["parse_error"])
		})
	}
}

func TestEntityIDFromString_PlainError_ReturnedAsIs(t *testing.T) {
	// Arrange
	plain := errors.New("plain")

	// Act
	_, err := shared.EntityIDFromString[testSalonMarker]("bad", plain)

	// Assert
	assert.Equal(t, plain, err)
}

func TestEntityIDFromString_DifferentTemplatesPerMarker(t *testing.T) {
	// Act
	_, errA := shared.EntityIDFromString[testCustomerMarker]("bad", errInvalidCustomer)
	_, errB := shared.EntityIDFromString[testSalonMarker]("bad", errInvalidSalon)

	// Assert
	assert.Contains(t, errA.Error(), "customer")
	assert.Contains(t, errB.Error(), "salon")
}

func TestEntityID_EqualsAndIsEmpty(t *testing.T) {
	// Arrange
	raw := "550e8400-e29b-41d4-a716-446655440000"
	id1, _ := shared.EntityIDFromString[testCustomerMarker](raw, errInvalidCustomer)
	id2, _ := shared.EntityIDFromString[testCustomerMarker](raw, errInvalidCustomer)
	var zero testCustomerID

	// Assert
	assert.True(t, id1.Equals(id2))
	assert.False(t, id1.Equals(shared.NewEntityID[testCustomerMarker]()))
	assert.True(t, zero.IsEmpty())
}

func TestClockFunc_ReturnsFunctionValue(t *testing.T) {
	// Arrange
	fixed := shared.SystemClock{}.Now()
	clock := shared.ClockFunc(func() time.Time { return fixed })

	// Assert
	assert.Equal(t, fixed, clock.Now())
}
