/*
Package formtree provides a hierarchical form-state engine.

# Overview

formtree models a form as a tree of controls. A Field holds a single
value; a Group aggregates named child controls into a map value. Every
control tracks a validation status (VALID, INVALID, PENDING, DISABLED),
a user-interaction flag (touched) and a modification flag (dirty), and
re-derives all three across the tree whenever anything changes.

The library is a state engine, not a renderer:
  - Synchronous and asynchronous validators with composition
  - Bidirectional propagation: edits flow up, resets and disable flow down
  - Value, status, and view-refresh notification streams
  - Configurable revalidation triggers (change, blur, submit)
  - OpenTelemetry integration for observability

# Basic Usage

Build a tree, mutate it, and read derived state:

	form := formtree.NewGroup().
	    Add("name", formtree.NewField("", formtree.WithValidators(validator.Required()))).
	    Add("email", formtree.NewField("", formtree.WithValidators(
	        validator.Required(), validator.Email())))

	form.Get("email").(*formtree.Field).SetValue("a@b.co")
	fmt.Println(form.Status())          // INVALID (name still empty)
	fmt.Println(form.GetError("required", "name")) // true

Group values are maps keyed by child name; disabled children are
excluded. Use RawValue to include them.

# Validation

A validator is a pure function from a control to an error map; nil means
valid. Attach validators at construction or swap them later:

	ageRange := func(c formtree.Control) formtree.Errors {
	    if n, ok := c.Value().(int); ok && (n < 0 || n > 150) {
	        return formtree.Errors{"range": n}
	    }
	    return nil
	}
	age := formtree.NewField(30, formtree.WithValidators(ageRange))

	age.SetValidators(formtree.Compose(ageRange, other))
	age.UpdateValueAndValidity()

Validators must not mutate any control. They run while the tree's
internal lock is held; a mutating validator deadlocks.

# Async Validation

Async validators run in their own goroutine after sync validation
passes. The control reports PENDING until the validator resolves:

	checkName := func(ctx context.Context, c formtree.Control) (formtree.Errors, error) {
	    taken, err := db.UsernameTaken(ctx, c.Value().(string))
	    if err != nil {
	        return nil, err
	    }
	    if taken {
	        return formtree.Errors{"taken": true}, nil
	    }
	    return nil, nil
	}
	name := formtree.NewField("", formtree.WithAsyncValidators(checkName))

The control handed to the validator is a detached snapshot of the subtree,
captured when the run starts: c.Value() above is the value the run was
started for, no matter how the live tree is edited while the probe is in
flight, and reading it from the validator's goroutine never races.

In-flight runs are never cancelled when a newer edit supersedes them.
Each run applies its result when it resolves, so with overlapping runs
the last RESOLUTION wins, which is not necessarily the run for the
latest value. Key the result to the validated value inside the
validator, or memoize with validator.CachedAsync, if that matters.

An error returned by an async validator marks the control INVALID with
the "async" error code and logs the failure.

# Disabling

Disable exempts a subtree from validation and aggregation:

	form.Get("billing").Disable()
	form.Value() // no "billing" key
	form.Status() // ignores the billing subtree

A group whose enabled children are all gone reports DISABLED itself.
Enable restores the subtree and revalidates.

# Update Strategies

Each control revalidates on change, blur, or submit. Unset controls
inherit from their parent, defaulting to change:

	form := formtree.NewGroup(formtree.WithUpdateOn(formtree.UpdateOnBlur)).
	    Add("name", formtree.NewField(""))

Blur and submit strategies stage edits in the field's pending value;
CommitPendingValue applies them. The binding subpackage wires this to UI
input events.

# Observability

Enable logging, metrics, and tracing on the root control:

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	form := formtree.NewGroup(
	    formtree.WithLogger(logger),
	    formtree.WithMetrics(true),
	    formtree.WithTracing(true))

Logs include structured fields: form_id, control_path, status,
duration_ms. OpenTelemetry metrics: formtree.control.validations,
formtree.control.validation_latency_ms, formtree.control.status_transitions,
formtree.async.validations, formtree.async.latency_ms,
formtree.async.errors. Tracing emits a formtree.validate span around
every revalidating mutator and a formtree.validate.async span around
each async run.

# Thread Safety

A control tree is safe for concurrent use: every exported mutator locks
a tree-wide mutex, and async validator results re-enter through the same
lock. Notification handlers run after the lock is released, before the
mutating call returns, so handlers may freely call back into the tree.
Getters read without locking and are intended for use from handlers and
from the mutating goroutine; concurrent readers may observe a mutation
mid-flight. Async validators are exempt: they receive a snapshot, not
the live control, so their reads are always consistent.

Group.Add rebinds the child subtree to the parent's tree and lock. Do
not attach a control while other goroutines are mutating that control's
subtree; in-flight async runs are fine, their resolutions land through
the tree the control belongs to at resolution time.

# Subpackages

  - validator: standard validation predicates, retry and caching wrappers
  - binding: UI input event adapters
  - stream: notification multicast primitives
  - config: file-based settings (YAML, JSON)
  - cache: validation result stores (memory, SQLite)
  - retry: backoff policies for flaky async validators
  - registry: generic keyed registry
  - observability: logging, metrics, and tracing helpers
*/
package formtree
