// Package settings implements the key-value stores that hold extension
// preferences. Every backend stores one string map per settings key and
// replaces it as a whole on write.
package settings
