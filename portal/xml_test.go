package portal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagValuePrefixTolerance(t *testing.T) {
	assert.Equal(t, "LBV123", tagValue("<ns1:AircraftIdentification>LBV123</ns1:AircraftIdentification>", "AircraftIdentification"))
	assert.Equal(t, "LBV123", tagValue("<AircraftIdentification>LBV123</AircraftIdentification>", "AircraftIdentification"))
	assert.Equal(t, "LBV123", tagValue("<NS1:aircraftidentification>LBV123</NS1:AIRCRAFTIDENTIFICATION>", "AircraftIdentification"))
}

func TestTagValueFirstMatchWins(t *testing.T) {
	body := "<Status>ACK</Status><Status>REJ</Status>"
	assert.Equal(t, "ACK", tagValue(body, "Status"))
}

func TestTagValueUnescapes(t *testing.T) {
	assert.Equal(t, `A & B <C> "D"`, tagValue("<Route>A &amp; B &lt;C&gt; &quot;D&quot;</Route>", "Route"))
}

func TestIntValueFallsBackToZero(t *testing.T) {
	assert.Equal(t, 42, intValue("<ID>42</ID>", "ID"))
	assert.Equal(t, 0, intValue("<ID>forty-two</ID>", "ID"))
	assert.Equal(t, 0, intValue("<Other>1</Other>", "ID"))
}

func TestBoolValue(t *testing.T) {
	assert.True(t, boolValue("<IsValid>1</IsValid>", "IsValid"))
	assert.True(t, boolValue("<IsValid>true</IsValid>", "IsValid"))
	assert.True(t, boolValue("<IsValid>TRUE</IsValid>", "IsValid"))
	assert.False(t, boolValue("<IsValid>0</IsValid>", "IsValid"))
	assert.False(t, boolValue("<Other>1</Other>", "IsValid"))
}

func TestTagBlocks(t *testing.T) {
	body := "<ns:FlightPlan><ID>1</ID></ns:FlightPlan><FlightPlan><ID>2</ID></FlightPlan>"
	blocks := tagBlocks(body, "FlightPlan")
	assert.Len(t, blocks, 2)
	assert.Equal(t, 1, intValue(blocks[0], "ID"))
	assert.Equal(t, 2, intValue(blocks[1], "ID"))
}

func TestXMLEscape(t *testing.T) {
	assert.Equal(t, "&amp;&lt;&gt;&quot;&apos;", xmlEscape(`&<>"'`))
	assert.Equal(t, `&<>"'`, xmlUnescape("&amp;&lt;&gt;&quot;&apos;"))
}
