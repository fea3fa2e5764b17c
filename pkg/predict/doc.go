// Package predict is the client for the external prediction service. It
// performs a single JSON POST per submission and classifies the outcome as a
// prediction, a service rejection (the service answered without a
// prediction) or a transport failure (no usable response).
package predict
