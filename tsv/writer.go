package tsv

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dcode-github/six_cities/backend/models"
)

var (
	fieldSanitizer = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")
	itemSanitizer  = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ", ListSeparator, " ")
)

// FormatOffer renders an offer as one record without the trailing newline.
// Tabs and newlines inside text fields are replaced with spaces, as is the
// list separator inside image and amenity items.
func FormatOffer(o models.Offer) string {
	amenities := make([]string, len(o.Amenities))
	for i, a := range o.Amenities {
		amenities[i] = cleanItem(string(a))
	}

	images := make([]string, len(o.Images))
	for i, img := range o.Images {
		images[i] = cleanItem(img)
	}

	fields := [FieldCount]string{
		fieldTitle:         clean(o.Title),
		fieldDescription:   clean(o.Description),
		fieldOpenDate:      o.OpenDate.UTC().Format(time.RFC3339),
		fieldCity:          string(o.City),
		fieldPreview:       clean(o.Preview),
		fieldImages:        strings.Join(images, ListSeparator),
		fieldIsPremium:     strconv.FormatBool(o.IsPremium),
		fieldIsFavorite:    strconv.FormatBool(o.IsFavorite),
		fieldRating:        formatFloat(o.Rating),
		fieldHousingType:   string(o.HousingType),
		fieldRooms:         strconv.Itoa(o.RoomsCount),
		fieldGuests:        strconv.Itoa(o.GuestsCount),
		fieldPrice:         strconv.Itoa(o.Price),
		fieldAmenities:     strings.Join(amenities, ListSeparator),
		fieldOwnerName:     clean(o.Owner.Name),
		fieldOwnerEmail:    clean(o.Owner.Email),
		fieldOwnerAvatar:   clean(o.Owner.Avatar),
		fieldOwnerType:     string(o.Owner.Type),
		fieldCommentsCount: strconv.Itoa(o.CommentsCount),
		fieldCoordinates:   formatFloat(o.Coordinates.Latitude) + CoordinatesSeparator + formatFloat(o.Coordinates.Longitude),
	}

	return strings.Join(fields[:], FieldSeparator)
}

func clean(s string) string {
	return fieldSanitizer.Replace(s)
}

func cleanItem(s string) string {
	return itemSanitizer.Replace(s)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Writer appends formatted offers to a destination, one per line.
type Writer struct {
	buf    *bufio.Writer
	closer io.Closer
	count  int
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{buf: bufio.NewWriter(w)}
}

// CreateWriter truncates or creates path.
func CreateWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, &FileAccessError{Path: path, Err: err}
	}
	w := NewWriter(f)
	w.closer = f
	return w, nil
}

func (w *Writer) Write(o models.Offer) error {
	if _, err := w.buf.WriteString(FormatOffer(o)); err != nil {
		return fmt.Errorf("write offer: %w", err)
	}
	if err := w.buf.WriteByte('\n'); err != nil {
		return fmt.Errorf("write offer: %w", err)
	}
	w.count++
	return nil
}

func (w *Writer) Count() int { return w.count }

// Close flushes buffered records and closes the underlying file, if any.
func (w *Writer) Close() error {
	err := w.buf.Flush()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
