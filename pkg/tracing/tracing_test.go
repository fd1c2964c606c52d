package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(false, "library", "localhost:4317")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.NoError(t, Flush(context.Background()))

	// 未安装Provider时没有有效的TraceID
	ctx, span := StartSpan(context.Background(), "test", "noop")
	defer span.End()
	assert.Empty(t, TraceID(ctx))
}

func TestStartSpan_RecordsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	shutdown, err := Install("library-test", exporter)
	require.NoError(t, err)

	ctx, root := StartSpan(context.Background(), "lending", "ReturnLoan", attribute.Int64("loan.id", 7))
	rootTraceID := TraceID(ctx)
	assert.NotEmpty(t, rootTraceID)

	childCtx, child := StartSpan(ctx, "lending", "NotifyWaitlistHead")
	assert.Equal(t, rootTraceID, TraceID(childCtx))
	End(child, errors.New("broker down"))
	End(root, nil)

	// 内存exporter在Shutdown时会清空记录,先Flush再读取
	require.NoError(t, Flush(context.Background()))
	spans := exporter.GetSpans()
	require.NoError(t, shutdown(context.Background()))
	require.Len(t, spans, 2)

	byName := map[string]tracetest.SpanStub{}
	for _, s := range spans {
		byName[s.Name] = s
	}

	assert.Equal(t, codes.Error, byName["NotifyWaitlistHead"].Status.Code)
	assert.Equal(t, codes.Unset, byName["ReturnLoan"].Status.Code)
	assert.Equal(t, byName["ReturnLoan"].SpanContext.SpanID(), byName["NotifyWaitlistHead"].Parent.SpanID())
	assert.Contains(t, byName["ReturnLoan"].Attributes, attribute.Int64("loan.id", 7))
}
