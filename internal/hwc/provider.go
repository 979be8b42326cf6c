package hwc

// DeviceProvider opens the production hwcomposer2 device. The
// libhybris bridge registers itself here from its init when the
// binary is built with hybris support; it stays nil elsewhere.
var DeviceProvider func() (Device, error)
