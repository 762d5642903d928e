package export

// Surface is the user-facing side of an export: overlays, the loading
// indicator and notifications.
//
// The pipeline calls ShowLoading at most once per export and always pairs it
// with HideLoading. Exactly one of Success or Failure is called per export.
type Surface interface {
	CloseOverlay()
	ShowLoading(message string)
	HideLoading()
	Success(message string)
	Failure(err error)
}

// NopSurface ignores all calls. The HTTP API uses it since the response
// itself carries the outcome.
type NopSurface struct{}

func (NopSurface) CloseOverlay()      {}
func (NopSurface) ShowLoading(string) {}
func (NopSurface) HideLoading()       {}
func (NopSurface) Success(string)     {}
func (NopSurface) Failure(error)      {}
