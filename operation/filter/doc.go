// Package filter provides the filter combinators Not, And, Or and Xor and a
// small family of primitive filters.
//
// A combinator evaluates its children directly, each against its own
// selection of the combinator's arguments and with its own private context:
//
//	f := filter.NewAndOn(
//		tuple.Named("user"), filter.NewNotNull(),
//		tuple.Named("email"), emailFilter,
//	)
//
// Remove verdicts combine as follows: Not removes when its child keeps;
// And removes when any child removes; Or removes only when every child
// removes; Xor removes when its two children disagree.
package filter
