/*
Package ports defines the driven ports (interfaces) of the vivarium engine.

These interfaces decouple the Experiment from where its records end up,
allowing the same simulation to print, keep series in memory, write files or
publish to Redis.

# Key Interfaces

  - Emitter: receives the configuration envelope once and one history
    envelope per completed tick.
  - HistorySource: reads back what an emitter has stored.
*/
package ports
