package gograd_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gograd"
)

// ============================================================
// MCP Tool tests
// ============================================================

func toolRequest(t *testing.T, s string) gograd.ToolRequest {
	t.Helper()
	var req gograd.ToolRequest
	require.NoError(t, json.Unmarshal([]byte(s), &req))
	return req
}

func TestHandleToolCall_DerivativesSource(t *testing.T) {
	resp := gograd.HandleToolCall(toolRequest(t, `{"tool":"derivatives","params":{"source":"pow(x, 3)","at":2,"n":3}}`))
	require.Empty(t, resp.Error)
	assert.Equal(t, []float64{8, 12, 12, 6}, resp.Result)
	assert.Equal(t, "[8, 12, 12, 6]", resp.String)
}

func TestHandleToolCall_DerivativesExpr(t *testing.T) {
	resp := gograd.HandleToolCall(toolRequest(t, `{"tool":"derivatives","params":{
		"expr":{"type":"func","name":"exp","arg":{"type":"func","name":"sin","arg":{"type":"sym","name":"x"}}},
		"at":0}}`))
	require.Empty(t, resp.Error)
	assert.Equal(t, []float64{1, 1}, resp.Result)
}

func TestHandleToolCall_NthDerivative(t *testing.T) {
	resp := gograd.HandleToolCall(toolRequest(t, `{"tool":"nth_derivative","params":{"source":"t*t*t","var":"t","at":1,"n":2}}`))
	require.Empty(t, resp.Error)
	assert.Equal(t, 6.0, resp.Result)
}

func TestHandleToolCall_Eval(t *testing.T) {
	resp := gograd.HandleToolCall(toolRequest(t, `{"tool":"eval","params":{"source":"x * x","at":3}}`))
	require.Empty(t, resp.Error)
	assert.Equal(t, 9.0, resp.Result)
	assert.Equal(t, "9", resp.String)
}

func TestHandleToolCall_Check(t *testing.T) {
	resp := gograd.HandleToolCall(toolRequest(t, `{"tool":"check","params":{"source":"sin(x)","points":[0,1,2]}}`))
	require.Empty(t, resp.Error)
	rep, ok := resp.Result.(gograd.CheckReport)
	require.True(t, ok)
	assert.True(t, rep.Within(1e-6))
}

func TestHandleToolCall_Graph(t *testing.T) {
	resp := gograd.HandleToolCall(toolRequest(t, `{"tool":"graph","params":{"source":"x * sin(x)","at":1,"backward":true}}`))
	require.Empty(t, resp.Error)
	dump, ok := resp.Result.(gograd.GraphJSON)
	require.True(t, ok)
	assert.Len(t, dump.Nodes, 3)
	assert.Equal(t, "(x * sin(x))", resp.String)
}

func TestHandleToolCall_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown tool":   `{"tool":"integrate","params":{}}`,
		"missing expr":   `{"tool":"eval","params":{"at":1}}`,
		"missing at":     `{"tool":"eval","params":{"source":"x"}}`,
		"bad at":         `{"tool":"eval","params":{"source":"x","at":"one"}}`,
		"bad source":     `{"tool":"eval","params":{"source":"x +","at":1}}`,
		"source type":    `{"tool":"eval","params":{"source":3,"at":1}}`,
		"negative n":     `{"tool":"derivatives","params":{"source":"x","at":1,"n":-1}}`,
		"fractional n":   `{"tool":"derivatives","params":{"source":"x","at":1,"n":1.5}}`,
		"n above limit":  `{"tool":"derivatives","params":{"source":"x","at":1,"n":33}}`,
		"points missing": `{"tool":"check","params":{"source":"x"}}`,
		"points type":    `{"tool":"check","params":{"source":"x","points":["a"]}}`,
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			resp := gograd.HandleToolCall(toolRequest(t, s))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestHandleToolCallWithLimits_MaxNodes(t *testing.T) {
	req := toolRequest(t, `{"tool":"derivatives","params":{"source":"exp(sin(x))","at":1,"n":8}}`)
	resp := gograd.HandleToolCallWithLimits(req, gograd.Limits{MaxOrder: 10, MaxNodes: 50})
	assert.Contains(t, resp.Error, gograd.ErrGraphTooLarge.Error())
}

func TestHandleToolCallWithLimits_MaxPoints(t *testing.T) {
	req := toolRequest(t, `{"tool":"check","params":{"source":"sin(x)","points":[0,1,2,3]}}`)
	resp := gograd.HandleToolCallWithLimits(req, gograd.Limits{MaxPoints: 3})
	assert.Contains(t, resp.Error, gograd.ErrTooManyPoints.Error())

	resp = gograd.HandleToolCallWithLimits(req, gograd.Limits{MaxPoints: 4})
	assert.Empty(t, resp.Error)
}

func TestHandleToolCallWithLimits_CheckAndEvalNodes(t *testing.T) {
	lim := gograd.Limits{MaxNodes: 3}
	resp := gograd.HandleToolCallWithLimits(toolRequest(t, `{"tool":"check","params":{"source":"exp(sin(x)) * x","points":[1]}}`), lim)
	assert.Contains(t, resp.Error, gograd.ErrGraphTooLarge.Error())

	resp = gograd.HandleToolCallWithLimits(toolRequest(t, `{"tool":"eval","params":{"source":"x * x * x * x","at":1}}`), lim)
	assert.Contains(t, resp.Error, gograd.ErrGraphTooLarge.Error())
}

func TestHandleToolCall_ReportsNodes(t *testing.T) {
	resp := gograd.HandleToolCall(toolRequest(t, `{"tool":"eval","params":{"source":"x * x","at":3}}`))
	require.Empty(t, resp.Error)
	assert.Equal(t, 2, resp.Nodes)

	resp = gograd.HandleToolCall(toolRequest(t, `{"tool":"derivatives","params":{"source":"x * x","at":3,"n":2}}`))
	require.Empty(t, resp.Error)
	assert.Greater(t, resp.Nodes, 2)
}

func TestHandleToolCall_GraphVariableName(t *testing.T) {
	resp := gograd.HandleToolCall(toolRequest(t, `{"tool":"graph","params":{"source":"t * 2","var":"t","at":1}}`))
	require.Empty(t, resp.Error)
	dump, ok := resp.Result.(gograd.GraphJSON)
	require.True(t, ok)
	assert.Equal(t, "t", dump.Nodes[0].Name)
}

func TestMCPToolSpec(t *testing.T) {
	spec := gograd.MCPToolSpec()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(spec), &m))
	tools, ok := m["tools"].([]interface{})
	require.True(t, ok)
	assert.Len(t, tools, 6)
	for _, name := range []string{"eval", "derivatives", "nth_derivative", "check", "graph", "mcp_spec"} {
		assert.True(t, strings.Contains(spec, `"`+name+`"`), name)
	}

	resp := gograd.HandleToolCall(gograd.ToolRequest{Tool: "mcp_spec"})
	assert.Equal(t, spec, resp.Result)
}
