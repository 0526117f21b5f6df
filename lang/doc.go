// Package lang implements a small configuration language that compiles to
// TOML.
//
// A source file is a sequence of assignments. Each binds a lowercase name to
// an integer, a string, a list or a dictionary. Integer values may be written
// as postfix expressions over earlier bindings.
//
// # Grammar
//
// Informal EBNF:
//
//	Program     → Assignment* EOF
//	Assignment  → Identifier '<-' Value ';'
//	Value       → Number | String | List | Dict | Expression
//	List        → 'list(' (Value (','? Value)*)? ')'
//	Dict        → '$[' (Pair Value (','? Pair Value)*)? ']'
//	Pair        → Key ':'
//	Expression  → '#{' (Number | Identifier | Operator | 'max()')* '}'
//	Operator    → '+' | '-' | '*' | '/'
//
// Names and dictionary keys are runs of lowercase ASCII letters. Strings are
// double-quoted with no escapes. Numbers are unsigned decimal literals that
// fit in an int64. A comma must be followed by another element.
//
// # Example
//
//	port <- 8080;
//	name <- "Example";
//	admin <- #{port 1 +};
//	limit <- #{port admin max()};
//	server <- $[
//	  host: "localhost",
//	  ports: list(#{port}, #{admin})
//	];
//
// compiles to
//
//	port = 8080
//	name = 'Example'
//	admin = 8081
//	limit = 8081
//
//	[server]
//	host = 'localhost'
//	ports = [8080, 8081]
//
// Only #{ } reads the environment; a bare name is not a value.
//
// # Evaluation
//
// Expressions are evaluated with a stack while parsing. An identifier sees
// the binding made by the most recent earlier assignment of that name, never
// the assignment that contains it. Division truncates toward zero, and
// overflow or division by zero is an error rather than wrapping.
package lang
