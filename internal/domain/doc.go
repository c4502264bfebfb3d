// Package domain holds the core subscriber types. SubscriberName and
// SubscriberEmail are parse-don't-validate value objects: construction is
// the only validation point and the values are immutable afterwards.
package domain
