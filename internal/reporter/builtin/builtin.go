// Package builtin registers the reporters shipped with seqgap.
package builtin

import (
	"sync"

	"firestige.xyz/seqgap/internal/reporter"
	"firestige.xyz/seqgap/internal/reporter/console"
	"firestige.xyz/seqgap/internal/reporter/kafka"
)

var once sync.Once

// Register adds the console and kafka reporters to the registry. Safe to call
// more than once.
func Register() {
	once.Do(func() {
		_ = reporter.Register(console.Name, console.NewConsoleReporter)
		_ = reporter.Register(kafka.Name, kafka.NewKafkaReporter)
	})
}
