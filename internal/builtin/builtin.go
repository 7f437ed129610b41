// Package builtin declares the standard extensions every project can use.
package builtin

import (
	"github.com/bargom/eventc/internal/catalog"
)

// ScenePackage is the import path of the runtime interfaces.
const ScenePackage = "github.com/bargom/eventc/pkg/scene"

var (
	number   = catalog.ParameterMetadata{Kind: catalog.KindExpression, Description: "Value"}
	text     = catalog.ParameterMetadata{Kind: catalog.KindString, Description: "Text"}
	object   = catalog.ParameterMetadata{Kind: catalog.KindObject, Description: "Object"}
	behavior = catalog.ParameterMetadata{Kind: catalog.KindBehavior, Description: "Behavior"}
	variable = catalog.ParameterMetadata{Kind: catalog.KindVariable, Description: "Variable"}
	operator = catalog.ParameterMetadata{Kind: catalog.KindOperator, Description: "Modification's sign"}
	relation = catalog.ParameterMetadata{Kind: catalog.KindRelationalOperator, Description: "Sign of the test"}
)

func free(function string) catalog.CallingConvention {
	return catalog.CallingConvention{Function: function}
}

func onObject(function string) catalog.CallingConvention {
	return catalog.CallingConvention{Kind: catalog.CallObject, Function: function}
}

func mutator(kind catalog.CallKind, setter, getter string, vt catalog.ValueType) catalog.CallingConvention {
	return catalog.CallingConvention{
		Kind:      kind,
		Function:  setter,
		Getter:    getter,
		ValueType: vt,
		Access:    catalog.AccessMutator,
	}
}

func compare(kind catalog.CallKind, function string, vt catalog.ValueType) catalog.CallingConvention {
	return catalog.CallingConvention{Kind: kind, Function: function, ValueType: vt}
}

func params(ps ...catalog.ParameterMetadata) []catalog.ParameterMetadata { return ps }

// Base declares scene variables, timers, math and control conditions.
func Base() catalog.Extension {
	return catalog.Extension{
		Name: "base",
		Conditions: []catalog.InstructionMetadata{
			{Type: "VarScene", Sentence: "The variable _PARAM0_ is _PARAM1_ _PARAM2_", Parameters: params(variable, relation, number), Call: compare(catalog.CallFree, "Variable", catalog.ValueNumber)},
			{Type: "VarSceneTxt", Sentence: "The text of variable _PARAM0_ is _PARAM1_ _PARAM2_", Parameters: params(variable, relation, text), Call: compare(catalog.CallFree, "VariableString", catalog.ValueString)},
			{Type: "Timer", Sentence: "The timer _PARAM1_ is greater than _PARAM0_ seconds", Parameters: params(number, text), Call: free("TimerElapsed")},
			{Type: "KeyPressed", Sentence: "_PARAM0_ key is pressed", Parameters: params(catalog.ParameterMetadata{Kind: catalog.KindKey, Description: "Key"}), Call: free("KeyPressed")},
			{Type: "Or", Sentence: "If one of these conditions is true:", Call: catalog.CallingConvention{Kind: catalog.CallOr}},
			{Type: "And", Sentence: "If all of these conditions are true:", Call: catalog.CallingConvention{Kind: catalog.CallAnd}},
			{Type: "Not", Sentence: "Invert the logical result of these conditions", Call: catalog.CallingConvention{Kind: catalog.CallNot}},
		},
		Actions: []catalog.InstructionMetadata{
			{Type: "ModVarScene", Sentence: "Do _PARAM1__PARAM2_ to variable _PARAM0_", Parameters: params(variable, operator, number), Call: mutator(catalog.CallFree, "SetVariable", "Variable", catalog.ValueNumber)},
			{Type: "ModVarSceneTxt", Sentence: "Do _PARAM1__PARAM2_ to the text of variable _PARAM0_", Parameters: params(variable, operator, text), Call: mutator(catalog.CallFree, "SetVariableString", "VariableString", catalog.ValueString)},
			{
				Type:       "ModVarGlobal",
				Sentence:   "Do _PARAM1__PARAM2_ to global variable _PARAM0_",
				Parameters: params(variable, operator, number),
				Call:       catalog.CallingConvention{Function: "GlobalVariable", ValueType: catalog.ValueNumber, Access: catalog.AccessCompound},
			},
			{Type: "ResetTimer", Sentence: "Reset the timer _PARAM0_", Parameters: params(text), Call: free("ResetTimer")},
			{Type: "Create", Sentence: "Create object _PARAM0_ at position _PARAM1_;_PARAM2_", Parameters: params(object, number, number), Call: free("CreateObject")},
			{Type: "DebugPrint", Sentence: "Print _PARAM0_ to the log", Parameters: params(text), Call: catalog.CallingConvention{Function: "log.Println", Include: "log"}},
		},
		Expressions: []catalog.ExpressionMetadata{
			{Name: "abs", Returns: catalog.ValueNumber, Parameters: params(number), Call: catalog.CallingConvention{Function: "math.Abs", Include: "math"}},
			{Name: "sqrt", Returns: catalog.ValueNumber, Parameters: params(number), Call: catalog.CallingConvention{Function: "math.Sqrt", Include: "math"}},
			{Name: "sin", Returns: catalog.ValueNumber, Parameters: params(number), Call: catalog.CallingConvention{Function: "math.Sin", Include: "math"}},
			{Name: "cos", Returns: catalog.ValueNumber, Parameters: params(number), Call: catalog.CallingConvention{Function: "math.Cos", Include: "math"}},
			{Name: "floor", Returns: catalog.ValueNumber, Parameters: params(number), Call: catalog.CallingConvention{Function: "math.Floor", Include: "math"}},
			{Name: "ceil", Returns: catalog.ValueNumber, Parameters: params(number), Call: catalog.CallingConvention{Function: "math.Ceil", Include: "math"}},
			{Name: "min", Returns: catalog.ValueNumber, Parameters: params(number, number), Call: catalog.CallingConvention{Function: "math.Min", Include: "math"}},
			{Name: "max", Returns: catalog.ValueNumber, Parameters: params(number, number), Call: catalog.CallingConvention{Function: "math.Max", Include: "math"}},
			{Name: "Random", Returns: catalog.ValueNumber, Parameters: params(number), Call: free("Random")},
			{Name: "TimeDelta", Returns: catalog.ValueNumber, Call: free("TimeDelta")},
			{Name: "Variable", Returns: catalog.ValueNumber, Parameters: params(variable), Call: free("Variable")},
			{Name: "ToNumber", Returns: catalog.ValueNumber, Parameters: params(text), Call: free("ToNumber")},
			{Name: "VariableString", Returns: catalog.ValueString, Parameters: params(variable), Call: free("VariableString")},
			{Name: "ToString", Returns: catalog.ValueString, Parameters: params(number), Call: free("ToString")},
			{Name: "SceneName", Returns: catalog.ValueString, Call: free("SceneName")},
		},
	}
}

// Objects declares position, visibility and variables of scene objects.
func Objects() catalog.Extension {
	return catalog.Extension{
		Name: "objects",
		Conditions: []catalog.InstructionMetadata{
			{Type: "PosX", Sentence: "The X position of _PARAM0_ is _PARAM1_ _PARAM2_", Parameters: params(object, relation, number), Call: compare(catalog.CallObject, "X", catalog.ValueNumber)},
			{Type: "PosY", Sentence: "The Y position of _PARAM0_ is _PARAM1_ _PARAM2_", Parameters: params(object, relation, number), Call: compare(catalog.CallObject, "Y", catalog.ValueNumber)},
			{Type: "Visible", Sentence: "_PARAM0_ is visible", Parameters: params(object), Call: onObject("Visible")},
			{Type: "VarObjet", Sentence: "The variable _PARAM1_ of _PARAM0_ is _PARAM2_ _PARAM3_", Parameters: params(object, variable, relation, number), Call: compare(catalog.CallObject, "Variable", catalog.ValueNumber)},
		},
		Actions: []catalog.InstructionMetadata{
			{Type: "MettreX", Sentence: "Do _PARAM1__PARAM2_ to the X position of _PARAM0_", Parameters: params(object, operator, number), Call: mutator(catalog.CallObject, "SetX", "X", catalog.ValueNumber)},
			{Type: "MettreY", Sentence: "Do _PARAM1__PARAM2_ to the Y position of _PARAM0_", Parameters: params(object, operator, number), Call: mutator(catalog.CallObject, "SetY", "Y", catalog.ValueNumber)},
			{Type: "ModVarObjet", Sentence: "Do _PARAM2__PARAM3_ to the variable _PARAM1_ of _PARAM0_", Parameters: params(object, variable, operator, number), Call: mutator(catalog.CallObject, "SetVariable", "Variable", catalog.ValueNumber)},
			{Type: "Delete", Sentence: "Delete object _PARAM0_", Parameters: params(object), Call: onObject("Delete")},
			{Type: "Cache", Sentence: "Hide _PARAM0_", Parameters: params(object), Call: onObject("Hide")},
			{Type: "Montre", Sentence: "Show _PARAM0_", Parameters: params(object), Call: onObject("Show")},
		},
		Expressions: []catalog.ExpressionMetadata{
			{Name: "X", Returns: catalog.ValueNumber, Parameters: params(object), Call: onObject("X")},
			{Name: "Y", Returns: catalog.ValueNumber, Parameters: params(object), Call: onObject("Y")},
			{Name: "Variable", Returns: catalog.ValueNumber, Parameters: params(object, variable), Call: onObject("Variable")},
			{Name: "VariableString", Returns: catalog.ValueString, Parameters: params(object, variable), Call: onObject("VariableString")},
			{Name: "Name", Returns: catalog.ValueString, Parameters: params(object), Call: onObject("Name")},
		},
	}
}

// Text declares the text object.
func Text() catalog.Extension {
	receiver := func(c catalog.CallingConvention) catalog.CallingConvention {
		c.Receiver = "scene.Text"
		return c
	}
	return catalog.Extension{
		Name:    "text",
		Include: ScenePackage,
		Actions: []catalog.InstructionMetadata{
			{Type: "TextContent", Sentence: "Do _PARAM1__PARAM2_ to the text of _PARAM0_", Parameters: params(object, operator, text), Call: receiver(mutator(catalog.CallObject, "SetText", "Text", catalog.ValueString))},
		},
		Expressions: []catalog.ExpressionMetadata{
			{Name: "String", Returns: catalog.ValueString, Parameters: params(object), Call: receiver(onObject("Text"))},
		},
	}
}

// Movement declares the movement behavior.
func Movement() catalog.Extension {
	receiver := func(c catalog.CallingConvention) catalog.CallingConvention {
		c.Receiver = "scene.Movement"
		return c
	}
	return catalog.Extension{
		Name:    "movement",
		Include: ScenePackage,
		Conditions: []catalog.InstructionMetadata{
			{Type: "IsMoving", Sentence: "_PARAM0_ is moving", Parameters: params(object, behavior), Call: receiver(catalog.CallingConvention{Kind: catalog.CallBehavior, Function: "IsMoving"})},
		},
		Actions: []catalog.InstructionMetadata{
			{Type: "SetSpeed", Sentence: "Do _PARAM2__PARAM3_ to the speed of _PARAM0_", Parameters: params(object, behavior, operator, number), Call: receiver(mutator(catalog.CallBehavior, "SetSpeed", "Speed", catalog.ValueNumber))},
		},
		Expressions: []catalog.ExpressionMetadata{
			{Name: "Speed", Returns: catalog.ValueNumber, Parameters: params(object, behavior), Call: receiver(catalog.CallingConvention{Kind: catalog.CallBehavior, Function: "Speed"})},
		},
	}
}

// Extensions returns every built-in extension in registration order.
func Extensions() []catalog.Extension {
	return []catalog.Extension{Base(), Objects(), Text(), Movement()}
}

// Catalog builds a catalog from the built-in extensions plus extra ones.
func Catalog(extra ...catalog.Extension) (*catalog.Catalog, error) {
	return catalog.NewBuilder().Add(Extensions()...).Add(extra...).Build()
}
