package bookcopy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCopy(t *testing.T) {
	c, err := NewCopy(1, "BC-0001", "A区3排", FormatPhysical, ConditionNew)
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, c.Status)
	assert.True(t, c.IsAvailable())

	_, err = NewCopy(1, "", "A区", FormatPhysical, ConditionNew)
	assert.ErrorIs(t, err, ErrInvalidBarcode)

	_, err = NewCopy(1, "BC-0002", "A区", Format("audio"), ConditionNew)
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = NewCopy(1, "BC-0003", "A区", FormatDigital, Condition("mint"))
	assert.ErrorIs(t, err, ErrInvalidCondition)
}

func TestCopy_StateMachine(t *testing.T) {
	c, err := NewCopy(1, "BC-0001", "A区", FormatPhysical, ConditionGood)
	require.NoError(t, err)

	// 可借 → 未借出时不能归还
	assert.ErrorIs(t, c.MarkAvailable(), ErrCopyNotLoaned)

	// 可借 → 已借出
	require.NoError(t, c.MarkLoaned())
	assert.Equal(t, StatusLoaned, c.Status)

	// 已借出 → 不能再次借出
	assert.ErrorIs(t, c.MarkLoaned(), ErrCopyUnavailable)

	// 已借出 → 可借
	require.NoError(t, c.MarkAvailable())
	assert.True(t, c.IsAvailable())
}

func TestCopy_UpdateCondition(t *testing.T) {
	c, err := NewCopy(1, "BC-0001", "A区", FormatPhysical, ConditionNew)
	require.NoError(t, err)

	require.NoError(t, c.UpdateCondition(ConditionDamaged))
	assert.Equal(t, ConditionDamaged, c.Condition)
	assert.ErrorIs(t, c.UpdateCondition("torn"), ErrInvalidCondition)
	assert.Equal(t, ConditionDamaged, c.Condition)
}
