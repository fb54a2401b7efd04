package catalog

const (
	ink   = "#1f2933"
	brown = "#8a5a2b"
	dark  = "#4a2c12"
	amber = "#e8a33d"
	blue  = "#2f80c2"
)

var defaultCatalog = New(
	Icon{ID: "Shopping", Glyph: Glyph{Width: 24, Height: 24, Paths: []Path{
		{D: "M1 3H5.2L6 6H23L20.4 14.5H8.3L8.8 16.5H20V18.5H7.2L4 5H1Z", Fill: ink},
		{D: "M7.5 20.5C7.5 19.7 8.2 19 9 19C9.8 19 10.5 19.7 10.5 20.5C10.5 21.3 9.8 22 9 22C8.2 22 7.5 21.3 7.5 20.5Z", Fill: ink},
		{D: "M16.5 20.5C16.5 19.7 17.2 19 18 19C18.8 19 19.5 19.7 19.5 20.5C19.5 21.3 18.8 22 18 22C17.2 22 16.5 21.3 16.5 20.5Z", Fill: ink},
	}}},
	Icon{ID: "Cookies", Glyph: Glyph{Width: 24, Height: 24, Paths: []Path{
		{D: "M12 2C17.5 2 22 6.5 22 12C22 17.5 17.5 22 12 22C6.5 22 2 17.5 2 12C2 6.5 6.5 2 12 2Z", Fill: brown},
		{D: "M7 8H9.5V10.5H7Z", Fill: dark},
		{D: "M13.5 6.5H16V9H13.5Z", Fill: dark},
		{D: "M10.5 13H13V15.5H10.5Z", Fill: dark},
		{D: "M15.5 15H18V17.5H15.5Z", Fill: dark},
		{D: "M6.5 15.5H9V18H6.5Z", Fill: dark},
	}}},
	Icon{ID: "Wine", Glyph: Glyph{Width: 24, Height: 24, Paths: []Path{
		{D: "M10 1H14V7C16.2 8 17 9.8 17 12V22C17 22.6 16.6 23 16 23H8C7.4 23 7 22.6 7 22V12C7 9.8 7.8 8 10 7Z", Fill: "#6b1d2a"},
		{D: "M8.5 13H15.5V19H8.5Z", Fill: "#f4e6c8"},
	}}},
	Icon{ID: "Noodle", Glyph: Glyph{Width: 24, Height: 24, Paths: []Path{
		{D: "M2 11H22C22 16.5 17.5 21 12 21C6.5 21 2 16.5 2 11Z", Fill: ink},
		{D: "M13.5 1.5L14.8 2.2L10.8 10H9.2Z", Fill: brown},
		{D: "M18 2.5L19.2 3.4L13.2 10H11.6Z", Fill: brown},
		{D: "M5 9H19V10.2H5Z", Fill: amber},
	}}},
	Icon{ID: "Cigarette", Glyph: Glyph{Width: 24, Height: 24, Paths: []Path{
		{D: "M1 14H17V18H1Z", Fill: "#d9d9d9"},
		{D: "M17 14H21V18H17Z", Fill: amber},
		{D: "M21.5 14H23V18H21.5Z", Fill: ink},
		{D: "M19 3C17 5.5 21 7.5 19 11H20.5C22.5 7.5 18.5 5.5 20.5 3Z", Fill: "#9aa5b1"},
	}}},
	Icon{ID: "Chocolate", Glyph: Glyph{Width: 24, Height: 24, Paths: []Path{
		{D: "M8 7.5H16C16.8 7.5 17.5 8.2 17.5 9V15C17.5 15.8 16.8 16.5 16 16.5H8C7.2 16.5 6.5 15.8 6.5 15V9C6.5 8.2 7.2 7.5 8 7.5Z", Fill: dark},
		{D: "M6.5 12L1 7V17Z", Fill: "#c0392b"},
		{D: "M17.5 12L23 7V17Z", Fill: "#c0392b"},
	}}},
	Icon{ID: "Flour", Glyph: Glyph{Width: 24, Height: 24, Paths: []Path{
		{D: "M7 2H17L15 6C18 8 19.5 12 19.5 15.5C19.5 19.5 16.5 22 12 22C7.5 22 4.5 19.5 4.5 15.5C4.5 12 6 8 9 6Z", Fill: "#c8b89a"},
		{D: "M8.5 12H15.5V16H8.5Z", Fill: "#ffffff"},
	}}},
	Icon{ID: "Beans", Glyph: Glyph{Width: 24, Height: 24, Paths: []Path{
		{D: "M8 3C12 1 19 4.5 19 10C19 13 16 13.5 14.8 15.5C13.6 18.5 13.5 22 9 22C5 22 2.5 17.5 3.5 12C4 8 5 4.5 8 3Z", Fill: "#6d8b3a"},
		{D: "M9 7C11 6.5 13 7.5 13.5 9.5L12.5 10C12 8.5 10.8 7.8 9.3 8.2Z", Fill: "#a3c46c"},
	}}},
	Icon{ID: "Surf", Glyph: Glyph{Width: 24, Height: 24, Paths: []Path{
		{D: "M18 1C21 2 20 8.5 15 14.5C10 20.5 5 21.5 3 20.5C2 18.5 4 13.5 9 8.5C13 4.5 16 0.5 18 1Z", Fill: amber},
		{D: "M1 20C4 18 6.5 22 9.5 20C12.5 18 15 22 18 20C20 18.8 21.5 18.8 23 20V23H1Z", Fill: blue},
	}}},
)
