// Package board implements the phase board engine: grouping tasks into stage
// columns, paging columns to fit a rendering width, and reordering tasks inside
// a column by drag or keyboard. The engine is synchronous and renderer-agnostic;
// hosts feed it width changes and gestures and observe it through callbacks.
package board
