// Package classify decides whether a detected bounding box belongs to the
// marker class or the payload class.
//
// During the ambiguous mid-transition period the marker symbol can appear
// inside the payload ROI, so every boundary must be classified before it is
// buffered; a single marker-sized box admitted to the payload buffer would
// contaminate the convergence analysis. Classification compares the box
// against the learned size profile of each class and ties go to the marker
// class, since under-accepting payload candidates is safer than accepting
// marker ones.
package classify
