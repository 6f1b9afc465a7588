// Package interaction is the interaction compilation and execution engine.
//
// It turns declarative action definitions into immutable linear Programs and
// runs them incrementally, one logical step per server tick, for many
// simultaneously-acting entities. Programs are compiled once at load time;
// the tick path never compiles or allocates per definition.
//
// Main Types:
//   - Compiler: lowers a node graph into a linear Program, deduplicating
//     shared subtrees and tolerating cycles via a visited set
//   - Definition: a compiled root interaction (cooldown, rules, priority,
//     Program), shared read-only across activations
//   - Registry: the atomically swappable table of loaded definitions
//   - Scheduler: creates, arbitrates, advances and retires activations
//   - Context: the mutable per-activation state machine
//
// Usage:
//
//	compiler := interaction.NewCompiler(tagRegistry)
//	defs, err := compiler.CompilePacks(packs)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	registry := interaction.NewRegistry()
//	registry.Swap(defs)
//
//	sched := interaction.NewScheduler(registry, store, effects, clock)
//	res := sched.TryActivate("player-1", "attack", "swing")
//	if res.Status == models.ActivationStarted {
//	    // advanced by the entity tick loop from here on
//	}
package interaction
