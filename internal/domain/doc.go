// Package domain contains the core domain entities and value objects for johnbot2.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (network, file system, logging) and
// contains only pure business logic.
//
// # Entities
//
//   - [RobotID]: Stable identity of one physical robot in the swarm
//   - [SensorSample]: A pair of light-sensor readings with its arrival time
//   - [MotorCommand]: A differential drive command derived from a sample
//   - [Snapshot]: A consistent per-robot view taken for logging and monitoring
//
// # Design Principles
//
// Domain entities are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Focused on business rules and invariants
//   - Testable without mocks or external systems
package domain
