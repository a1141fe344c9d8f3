/*
Package dnsbench contains the engine for benchmarking name resolution backends.
Each measured operation is represented by Benchmark, a named function with a set of tags.
Benchmarks are registered into a Suite, which runs them strictly one after another using a Trial,
so that measurements of different backends sharing one network path do not distort each other.
A Trial invokes the operation sequentially, first a few warmup invocations that are discarded,
then sampling invocations until the relative margin of error of the mean duration is small enough
or the time or sample budget is exhausted. Every finished Trial publishes exactly one Result,
which is relayed to Suite listeners together with the start and complete notifications.
*/
package dnsbench
