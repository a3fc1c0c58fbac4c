package ui

// iconBytes is a 16x16 RGBA PNG: a blue frame with a white play marker.
var iconBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x10,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0xf3, 0xff, 0x61, 0x00, 0x00, 0x00,
	0x36, 0x49, 0x44, 0x41, 0x54, 0x78, 0xda, 0x63, 0x60, 0x18, 0x3e, 0x40,
	0x23, 0xef, 0xce, 0x7f, 0x7c, 0x18, 0x04, 0x90, 0xf9, 0x24, 0x19, 0x00,
	0x03, 0x64, 0x19, 0x80, 0x0c, 0x48, 0x36, 0x00, 0x1d, 0x90, 0x64, 0x00,
	0x36, 0x40, 0x5f, 0x03, 0x28, 0xf6, 0x02, 0x55, 0x02, 0x91, 0x2a, 0xd1,
	0x48, 0x74, 0x42, 0x1a, 0xba, 0x00, 0x00, 0xed, 0xa6, 0x53, 0x52, 0x89,
	0x7a, 0x3a, 0xde, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
	0x42, 0x60, 0x82,
}
