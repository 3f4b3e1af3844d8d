package program

// denseCSV mimics a coach spreadsheet export: a week banner, a header row,
// day labels only on the first row of each day, blank spacer rows and a
// trailing preview row.
const denseCSV = `,Week 50,,,,,,,,,,,,,,
,Exercise,Sets,x,Reps,Target Weight,@,Target RPE,Actual Weight,1,2,3,4,5,Coach Notes,Client Notes
Mon,Squat,4,x,3,145-147.5,@,8,,,,,,,Brace hard,
,Squat Pause,3,x,2,120,@,7.5,,,,,,,,
,,,,,,,,,,,,,,,
Wed,Bench Press,5,x,5,100,@,8,,,,,,,Pause on chest,
,Bench Accessory,3,x,8-10,,,,,,,,,,,
Fri,Deadlift,1,x,1,~200kg,@,RPE 9,,,,,,,,
,Week 51 preview,,,,,,,,,,,,,,
`

const standardCSV = `Day,Exercise,Sets,Reps,Load_kg,RPE,Notes
Mon,Bench Press,5,5,100,8,Focus on pause
`
