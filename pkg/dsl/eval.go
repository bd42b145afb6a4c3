package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"

	"github.com/rushteam/predbench/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("row", cel.MapType(cel.StringType, cel.DynType)),
	)
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// RowExpr 是基于 CEL (Common Expression Language) 的行表达式，编译一次可多次求值。
//
// 表达式语法（CEL 标准语法）：
//   - 数值：row.SepalLength > 5.0
//   - 布尔：row.Label == true
//   - 文本：row.SentimentText.size() > 0 / row.SentimentText.contains("fan")
//   - 向量：row.Features[0] >= 1.0
//   - 逻辑：row.Label && row.Features[8] < 3.0
type RowExpr struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式，表达式必须返回布尔值。
func Compile(expr string) (*RowExpr, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %v", issues.Err())
	}
	switch ast.OutputType().Kind() {
	case types.BoolKind, types.DynKind:
	default:
		return nil, fmt.Errorf("expression must return bool, got %s", ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %v", err)
	}
	return &RowExpr{expr: expr, prg: prg}, nil
}

// String 返回原始表达式。
func (e *RowExpr) String() string { return e.expr }

// Evaluate 在一行数据上求值。
func (e *RowExpr) Evaluate(schema *core.Schema, row core.Row) (bool, error) {
	out, _, err := e.prg.Eval(map[string]interface{}{
		"row": buildInput(schema, row),
	})
	if err != nil {
		return false, fmt.Errorf("eval error: %v", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据：列名 -> 值
func buildInput(schema *core.Schema, row core.Row) map[string]interface{} {
	input := make(map[string]interface{}, schema.Len())
	for i := 0; i < schema.Len() && i < len(row); i++ {
		col := schema.Column(i)
		switch col.Kind {
		case core.KindNumber:
			input[col.Name] = row[i].Num
		case core.KindBool:
			input[col.Name] = row[i].Bool
		case core.KindText:
			input[col.Name] = row[i].Text
		case core.KindVector:
			input[col.Name] = row[i].Vec
		}
	}
	return input
}
