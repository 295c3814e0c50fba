package geocode

// Result is a resolved coordinate plus the best-available formatted address.
type Result struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

// landmarks maps well-known Seoul spots to coordinates so common queries
// resolve without an external call.
var landmarks = map[string]Result{
	"용산구청":  {Lat: 37.5324, Lng: 126.9906, Address: "서울특별시 용산구 녹사평대로 150"},
	"이태원":   {Lat: 37.5345, Lng: 126.9945, Address: "서울특별시 용산구 이태원동"},
	"이태원역":  {Lat: 37.5345, Lng: 126.9945, Address: "서울특별시 용산구 이태원동"},
	"한남동":   {Lat: 37.5340, Lng: 127.0020, Address: "서울특별시 용산구 한남동"},
	"경리단길":  {Lat: 37.5390, Lng: 126.9875, Address: "서울특별시 용산구 회나무로"},
	"녹사평":   {Lat: 37.5345, Lng: 126.9870, Address: "서울특별시 용산구 녹사평대로"},
	"녹사평역":  {Lat: 37.5345, Lng: 126.9870, Address: "서울특별시 용산구 녹사평대로"},
	"해방촌":   {Lat: 37.5420, Lng: 126.9870, Address: "서울특별시 용산구 용산동2가"},
	"강남역":   {Lat: 37.4979, Lng: 127.0276, Address: "서울특별시 강남구 강남대로 396"},
	"강남":    {Lat: 37.4979, Lng: 127.0276, Address: "서울특별시 강남구"},
	"홍대":    {Lat: 37.5563, Lng: 126.9220, Address: "서울특별시 마포구 와우산로"},
	"홍대입구":  {Lat: 37.5563, Lng: 126.9220, Address: "서울특별시 마포구 양화로"},
	"홍대입구역": {Lat: 37.5563, Lng: 126.9220, Address: "서울특별시 마포구 양화로"},
	"명동":    {Lat: 37.5636, Lng: 126.9860, Address: "서울특별시 중구 명동"},
	"잠실":    {Lat: 37.5133, Lng: 127.1001, Address: "서울특별시 송파구 잠실동"},
	"여의도":   {Lat: 37.5219, Lng: 126.9245, Address: "서울특별시 영등포구 여의도동"},
	"신촌":    {Lat: 37.5551, Lng: 126.9368, Address: "서울특별시 서대문구 신촌동"},
	"건대":    {Lat: 37.5404, Lng: 127.0699, Address: "서울특별시 광진구 능동로"},
	"건대입구":  {Lat: 37.5404, Lng: 127.0699, Address: "서울특별시 광진구 능동로"},
	"성수":    {Lat: 37.5445, Lng: 127.0557, Address: "서울특별시 성동구 성수동"},
	"성수동":   {Lat: 37.5445, Lng: 127.0557, Address: "서울특별시 성동구 성수동"},
	"을지로":   {Lat: 37.5660, Lng: 126.9910, Address: "서울특별시 중구 을지로"},
	"종로":    {Lat: 37.5700, Lng: 126.9920, Address: "서울특별시 종로구 종로"},
	"압구정":   {Lat: 37.5270, Lng: 127.0280, Address: "서울특별시 강남구 압구정동"},
	"청담":    {Lat: 37.5255, Lng: 127.0470, Address: "서울특별시 강남구 청담동"},
	"서울역":   {Lat: 37.5547, Lng: 126.9707, Address: "서울특별시 용산구 한강대로"},
	"용산역":   {Lat: 37.5298, Lng: 126.9648, Address: "서울특별시 용산구 한강대로"},
	"삼성역":   {Lat: 37.5090, Lng: 127.0640, Address: "서울특별시 강남구 테헤란로"},
	"선릉역":   {Lat: 37.5047, Lng: 127.0490, Address: "서울특별시 강남구 테헤란로"},
	"망원":    {Lat: 37.5567, Lng: 126.9100, Address: "서울특별시 마포구 망원동"},
	"연남동":   {Lat: 37.5660, Lng: 126.9250, Address: "서울특별시 마포구 연남동"},
	"이촌":    {Lat: 37.5220, Lng: 126.9720, Address: "서울특별시 용산구 이촌동"},
	"한강진역":  {Lat: 37.5398, Lng: 126.9975, Address: "서울특별시 용산구 한남동"},
}
