package logging

import (
	"time"
)

func String(key, value string) Field        { return Field{Key: key, Value: value} }
func Int(key string, value int) Field       { return Field{Key: key, Value: value} }
func Uint64(key string, value uint64) Field { return Field{Key: key, Value: value} }
func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}
func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }
func Any(key string, value any) Field   { return Field{Key: key, Value: value} }

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

// Error records err under "error"; nil errors are recorded as null.
func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Planner-specific field helpers.

func Component(name string) Field   { return String("component", name) }
func Node(n int) Field              { return Int("node", n) }
func NextNode(n int) Field          { return Int("next_node", n) }
func InstructionID(id uint64) Field { return Uint64("instruction_id", id) }
func Policy(name string) Field      { return String("policy", name) }
func Tick(n uint64) Field           { return Uint64("tick", n) }
func Steps(n int) Field             { return Int("steps", n) }
func Reason(r string) Field         { return String("reason", r) }
func Count(n int) Field             { return Int("count", n) }
func Latency(d time.Duration) Field { return Duration("latency", d) }
